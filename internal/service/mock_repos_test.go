package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"elearn/backend/internal/model"
	pkgerrors "elearn/backend/pkg/errors"
	"elearn/backend/pkg/render"
)

// ── 固定测试数据 ──

const (
	testStudentID = "11111111-1111-4111-8111-111111111111"
	testOtherID   = "22222222-2222-4222-8222-222222222222"
	testTeacherID = "33333333-3333-4333-8333-333333333333"
	testAdminID   = "44444444-4444-4444-8444-444444444444"
	testCourseID  = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	testEmptyID   = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb" // 没有视频的课程
	testVideo1    = "c0000000-0000-4000-8000-000000000001"
	testVideo2    = "c0000000-0000-4000-8000-000000000002"
	testVideo3    = "c0000000-0000-4000-8000-000000000003"
	testMissingID = "dddddddd-dddd-4ddd-8ddd-dddddddddddd"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[string]*model.User{
		testStudentID: {UserID: testStudentID, Name: "Ana Petrović", Email: "ana@example.com", Role: model.RoleStudent},
		testOtherID:   {UserID: testOtherID, Name: "Marko Jovanović", Email: "marko@example.com", Role: model.RoleStudent},
		testTeacherID: {UserID: testTeacherID, Name: "Prof. Ilić", Email: "ilic@example.com", Role: model.RoleTeacher},
		testAdminID:   {UserID: testAdminID, Name: "Admin", Email: "admin@example.com", Role: model.RoleAdmin},
	}}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CourseRepository / VideoRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: map[string]*model.Course{
		testCourseID: {CourseID: testCourseID, Title: "Go Concurrency", TeacherID: testTeacherID},
		testEmptyID:  {CourseID: testEmptyID, Title: "Orientation", TeacherID: testTeacherID},
	}}
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*model.Video
}

func newMockVideoRepo() *mockVideoRepo {
	m := &mockVideoRepo{videos: make(map[string]*model.Video)}
	m.add(testVideo1, testCourseID, 1)
	m.add(testVideo2, testCourseID, 2)
	m.add(testVideo3, testCourseID, 3)
	return m
}

func (m *mockVideoRepo) add(id, courseID string, position int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.videos[id] = &model.Video{VideoID: id, CourseID: courseID, Title: "video " + id, Position: position}
}

func (m *mockVideoRepo) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.videos, id)
}

func (m *mockVideoRepo) GetByID(_ context.Context, id string) (*model.Video, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.videos[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVideoRepo) ListIDsByCourse(_ context.Context, courseID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []*model.Video
	for _, v := range m.videos {
		if v.CourseID == courseID {
			list = append(list, v)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	ids := make([]string, 0, len(list))
	for _, v := range list {
		ids = append(ids, v.VideoID)
	}
	return ids, nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	mu          sync.Mutex
	enrollments map[string]*model.Enrollment // key: student/course
	courses     *mockCourseRepo
}

func newMockEnrollmentRepo(courses *mockCourseRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]*model.Enrollment), courses: courses}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := e.StudentID + "/" + e.CourseID
	if _, ok := m.enrollments[key]; ok {
		return false, nil
	}
	m.enrollments[key] = e
	return true, nil
}

func (m *mockEnrollmentRepo) Exists(_ context.Context, studentID, courseID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.enrollments[studentID+"/"+courseID]
	return ok, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID {
			item := *e
			item.Course = m.courses.courses[e.CourseID]
			result = append(result, item)
		}
	}
	return result, nil
}

// ── Mock ProgressRepository ──

type mockProgressRepo struct {
	mu      sync.Mutex
	watched map[string]bool // key: student/video
}

func newMockProgressRepo() *mockProgressRepo {
	return &mockProgressRepo{watched: make(map[string]bool)}
}

func (m *mockProgressRepo) MarkWatched(_ context.Context, r *model.WatchRecord) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := r.StudentID + "/" + r.VideoID
	if m.watched[key] {
		return false, nil
	}
	m.watched[key] = true
	return true, nil
}

func (m *mockProgressRepo) ListWatchedVideoIDs(_ context.Context, studentID string, videoIDs []string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, id := range videoIDs {
		if m.watched[studentID+"/"+id] {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ── Mock CertificateRepository ──
// Upsert 在锁内完成"查找或插入"，与数据库唯一索引 + ON CONFLICT 的语义一致

type mockCertificateRepo struct {
	mu          sync.Mutex
	certs       map[string]*model.Certificate // key: student/course
	courses     *mockCourseRepo
	upsertCalls atomic.Int32
	upsertErr   error
}

func newMockCertificateRepo(courses *mockCourseRepo) *mockCertificateRepo {
	return &mockCertificateRepo{certs: make(map[string]*model.Certificate), courses: courses}
}

func (m *mockCertificateRepo) Upsert(_ context.Context, cert *model.Certificate) (*model.Certificate, error) {
	m.upsertCalls.Add(1)
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := cert.StudentID + "/" + cert.CourseID
	existing, ok := m.certs[key]
	if !ok {
		stored := *cert
		if stored.CertificateID == "" {
			stored.CertificateID = uuid.NewString()
		}
		stored.CreatedAt = time.Now()
		m.certs[key] = &stored
		existing = &stored
	} else {
		existing.ArtifactKey = cert.ArtifactKey
		existing.CertificateURL = cert.CertificateURL
		existing.ContentType = cert.ContentType
		existing.Source = cert.Source
		existing.Details = cert.Details
		existing.IssuedAt = cert.IssuedAt
	}
	result := *existing
	result.Course = m.courses.courses[result.CourseID]
	return &result, nil
}

func (m *mockCertificateRepo) GetByID(_ context.Context, id string) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.certs {
		if c.CertificateID == id {
			result := *c
			result.Course = m.courses.courses[c.CourseID]
			return &result, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCertificateRepo) GetByStudentAndCourse(_ context.Context, studentID, courseID string) (*model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.certs[studentID+"/"+courseID]; ok {
		result := *c
		return &result, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCertificateRepo) ListByStudent(_ context.Context, studentID string) ([]model.Certificate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Certificate
	for _, c := range m.certs {
		if c.StudentID == studentID {
			item := *c
			item.Course = m.courses.courses[c.CourseID]
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].IssuedAt.After(result[j].IssuedAt) })
	return result, nil
}

func (m *mockCertificateRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.certs)
}

// ── Mock Renderer ──

type mockRenderer struct {
	calls    atomic.Int32
	err      error
	panicMsg string
	delay    time.Duration

	mu   sync.Mutex
	last render.CertificateData
}

func (m *mockRenderer) Render(data render.CertificateData) ([]byte, error) {
	m.calls.Add(1)
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	if m.err != nil {
		return nil, m.err
	}
	m.mu.Lock()
	m.last = data
	m.mu.Unlock()
	return []byte("PNG:" + data.Name + "|" + data.CourseTitle + "|" + data.Date), nil
}

func (m *mockRenderer) ContentType() string { return "image/png" }

func (m *mockRenderer) Extension() string { return ".png" }

func (m *mockRenderer) lastData() render.CertificateData {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// ── Mock Store ──

type mockStore struct {
	mu        sync.Mutex
	files     map[string][]byte
	putErr    error
	deleteErr error
	puts      atomic.Int32
	deletes   []string
}

func newMockStore() *mockStore {
	return &mockStore{files: make(map[string][]byte)}
}

func (m *mockStore) Put(_ context.Context, key string, data []byte) error {
	m.puts.Add(1)
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[key] = append([]byte(nil), data...)
	return nil
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if data, ok := m.files[key]; ok {
		return data, nil
	}
	return nil, pkgerrors.ErrArtifactNotFound
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, key)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.files, key)
	return nil
}

func (m *mockStore) URL(key string) string {
	return "https://cdn.example.com/" + key
}

func (m *mockStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.files))
	for k := range m.files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	jti string
	ttl time.Duration
	err error
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.jti = jti
	m.ttl = ttl
	return nil
}

var errMockBackend = errors.New("mock backend failure")

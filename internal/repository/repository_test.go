package repository_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"elearn/backend/config"
	"elearn/backend/internal/model"
	"elearn/backend/internal/repository"
	"elearn/backend/pkg/database"
)

// ═══════════════════════════════════════════════════════════
// Test Setup：每个用例使用独立的 SQLite 文件，走真实迁移
// ═══════════════════════════════════════════════════════════

type fixture struct {
	db      *gorm.DB
	repo    *repository.Repository
	student *model.User
	teacher *model.User
	course  *model.Course
	videos  []*model.Video
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := database.NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.RunMigrations(sqlDB, config.DriverSQLite, zap.NewNop()); err != nil {
		t.Fatalf("迁移失败: %v", err)
	}

	f := &fixture{db: db, repo: repository.NewRepository(db)}
	ctx := context.Background()

	f.teacher = &model.User{Name: "Prof. Ilić", Email: "ilic@example.com", Role: model.RoleTeacher}
	f.student = &model.User{Name: "Ana Petrović", Email: "ana@example.com", Role: model.RoleStudent}
	for _, u := range []*model.User{f.teacher, f.student} {
		if err := db.WithContext(ctx).Create(u).Error; err != nil {
			t.Fatalf("创建用户失败: %v", err)
		}
	}

	f.course = &model.Course{Title: "Go Concurrency", TeacherID: f.teacher.UserID}
	if err := db.WithContext(ctx).Omit("Videos", "Teacher").Create(f.course).Error; err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	// 故意倒序插入，验证按 position 排序
	for i := 3; i >= 1; i-- {
		v := &model.Video{CourseID: f.course.CourseID, Title: fmt.Sprintf("Lesson %d", i), Position: i}
		if err := db.WithContext(ctx).Create(v).Error; err != nil {
			t.Fatalf("创建视频失败: %v", err)
		}
		f.videos = append([]*model.Video{v}, f.videos...)
	}
	return f
}

func (f *fixture) certificate(issuedAt time.Time, key string) *model.Certificate {
	return &model.Certificate{
		StudentID:      f.student.UserID,
		CourseID:       f.course.CourseID,
		ArtifactKey:    key,
		CertificateURL: "https://cdn.example.com/" + key,
		ContentType:    "image/png",
		Source:         model.CertificateSourceIssued,
		Details:        datatypes.JSONMap{"name": f.student.Name},
		IssuedAt:       issuedAt,
	}
}

// ═══════════════════════════════════════════════════════════
// Course / Video
// ═══════════════════════════════════════════════════════════

func TestVideoRepo_ListIDsByCourse_Ordered(t *testing.T) {
	f := setupFixture(t)

	ids, err := f.repo.Video.ListIDsByCourse(context.Background(), f.course.CourseID)
	if err != nil {
		t.Fatalf("ListIDsByCourse 失败: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("期望 3 个视频，实际 %d", len(ids))
	}
	for i, v := range f.videos {
		if ids[i] != v.VideoID {
			t.Errorf("第 %d 个视频顺序不符: %s != %s", i, ids[i], v.VideoID)
		}
	}
}

func TestCourseRepo_GetByID_NotFound(t *testing.T) {
	f := setupFixture(t)

	_, err := f.repo.Course.GetByID(context.Background(), "00000000-0000-4000-8000-000000000000")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望 ErrRecordNotFound，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Enrollment / Progress
// ═══════════════════════════════════════════════════════════

func TestEnrollmentRepo_CreateIdempotent(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for i, want := range []bool{true, false} {
		created, err := f.repo.Enrollment.Create(ctx, &model.Enrollment{
			StudentID:  f.student.UserID,
			CourseID:   f.course.CourseID,
			EnrolledAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("第 %d 次报名失败: %v", i+1, err)
		}
		if created != want {
			t.Errorf("第 %d 次报名期望 created=%v，实际 %v", i+1, want, created)
		}
	}

	ok, err := f.repo.Enrollment.Exists(ctx, f.student.UserID, f.course.CourseID)
	if err != nil || !ok {
		t.Errorf("期望已报名，实际 ok=%v err=%v", ok, err)
	}

	list, _ := f.repo.Enrollment.ListByStudent(ctx, f.student.UserID)
	if len(list) != 1 || list[0].Course == nil || list[0].Course.Title != "Go Concurrency" {
		t.Errorf("报名列表不符: %+v", list)
	}
}

func TestProgressRepo_MarkWatchedAndList(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	for _, want := range []bool{true, false} {
		created, err := f.repo.Progress.MarkWatched(ctx, &model.WatchRecord{
			StudentID: f.student.UserID,
			VideoID:   f.videos[1].VideoID,
			WatchedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("MarkWatched 失败: %v", err)
		}
		if created != want {
			t.Errorf("期望 created=%v，实际 %v", want, created)
		}
	}

	all := []string{f.videos[0].VideoID, f.videos[1].VideoID, f.videos[2].VideoID}
	watched, err := f.repo.Progress.ListWatchedVideoIDs(ctx, f.student.UserID, all)
	if err != nil {
		t.Fatalf("ListWatchedVideoIDs 失败: %v", err)
	}
	if len(watched) != 1 || watched[0] != f.videos[1].VideoID {
		t.Errorf("已观看集合不符: %v", watched)
	}

	none, err := f.repo.Progress.ListWatchedVideoIDs(ctx, f.student.UserID, nil)
	if err != nil || len(none) != 0 {
		t.Errorf("空输入期望空结果，实际 %v %v", none, err)
	}
}

func TestProgressRepo_MarkWatched_UnknownVideoRejected(t *testing.T) {
	f := setupFixture(t)

	_, err := f.repo.Progress.MarkWatched(context.Background(), &model.WatchRecord{
		StudentID: f.student.UserID,
		VideoID:   "00000000-0000-4000-8000-000000000000",
		WatchedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Error("外键约束应拒绝不存在的视频")
	}
}

// ═══════════════════════════════════════════════════════════
// Certificate Upsert
// ═══════════════════════════════════════════════════════════

func TestCertificateRepo_UpsertInsertsThenUpdates(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	first := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)

	created, err := f.repo.Certificate.Upsert(ctx, f.certificate(first, "certificates/a.png"))
	if err != nil {
		t.Fatalf("首次 Upsert 失败: %v", err)
	}
	if _, err := uuid.Parse(created.CertificateID); err != nil {
		t.Errorf("证书 ID 应为 UUID，实际 %q", created.CertificateID)
	}
	if created.Course == nil || created.Course.Title != "Go Concurrency" {
		t.Error("期望回读时预加载课程")
	}

	second := first.Add(24 * time.Hour)
	update := f.certificate(second, "certificates/b.pdf")
	update.ContentType = "application/pdf"
	update.Source = model.CertificateSourceUploaded
	updated, err := f.repo.Certificate.Upsert(ctx, update)
	if err != nil {
		t.Fatalf("二次 Upsert 失败: %v", err)
	}

	if updated.CertificateID != created.CertificateID {
		t.Errorf("更新不应改变证书 ID: %s != %s", updated.CertificateID, created.CertificateID)
	}
	if updated.ArtifactKey != "certificates/b.pdf" || updated.Source != model.CertificateSourceUploaded {
		t.Errorf("字段未更新: %+v", updated)
	}
	if !updated.IssuedAt.Equal(second) {
		t.Errorf("issued_at 未更新: %v", updated.IssuedAt)
	}

	var count int64
	f.db.Model(&model.Certificate{}).Count(&count)
	if count != 1 {
		t.Errorf("期望 1 条记录，实际 %d", count)
	}
}

func TestCertificateRepo_Upsert_KeepsFirstIDOnConflict(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	created, err := f.repo.Certificate.Upsert(ctx, f.certificate(time.Now().UTC(), "certificates/a.png"))
	if err != nil {
		t.Fatalf("首次 Upsert 失败: %v", err)
	}

	// 冲突行自带另一个 ID，落库的仍是首个 ID
	again := f.certificate(time.Now().UTC(), "certificates/a.png")
	again.CertificateID = uuid.NewString()
	updated, err := f.repo.Certificate.Upsert(ctx, again)
	if err != nil {
		t.Fatalf("冲突 Upsert 失败: %v", err)
	}
	if updated.CertificateID != created.CertificateID {
		t.Errorf("冲突更新不应改变证书 ID: %s != %s", updated.CertificateID, created.CertificateID)
	}
}

func TestCertificateRepo_UpsertConcurrent(t *testing.T) {
	f := setupFixture(t)
	const n = 10

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cert, err := f.repo.Certificate.Upsert(context.Background(), f.certificate(time.Now().UTC(), "certificates/x.png"))
			errs[i] = err
			if cert != nil {
				ids[i] = cert.CertificateID
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("第 %d 个并发 Upsert 失败: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("并发 Upsert 返回的 ID 不一致: %s != %s", ids[i], ids[0])
		}
	}

	var count int64
	f.db.Model(&model.Certificate{}).Count(&count)
	if count != 1 {
		t.Errorf("期望恰好 1 条记录，实际 %d", count)
	}
}

func TestCertificateRepo_ListByStudent(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	list, err := f.repo.Certificate.ListByStudent(ctx, f.student.UserID)
	if err != nil || len(list) != 0 {
		t.Fatalf("期望空列表，实际 %v %v", list, err)
	}

	if _, err := f.repo.Certificate.Upsert(ctx, f.certificate(time.Now().UTC(), "certificates/a.png")); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}

	list, _ = f.repo.Certificate.ListByStudent(ctx, f.student.UserID)
	if len(list) != 1 || list[0].Course == nil {
		t.Errorf("证书列表不符: %+v", list)
	}

	got, err := f.repo.Certificate.GetByID(ctx, list[0].CertificateID)
	if err != nil || got.StudentID != f.student.UserID {
		t.Errorf("GetByID 不符: %+v %v", got, err)
	}
	if got.Details["name"] != "Ana Petrović" {
		t.Errorf("details 快照不符: %v", got.Details)
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"elearn/backend/config"
	"elearn/backend/internal/repository"
)

// testEnv 聚合所有 mock，便于在用例中直接操纵数据
type testEnv struct {
	cfg         *config.Config
	repo        *repository.Repository
	users       *mockUserRepo
	courses     *mockCourseRepo
	videos      *mockVideoRepo
	enrollments *mockEnrollmentRepo
	progress    *mockProgressRepo
	certs       *mockCertificateRepo
	renderer    *mockRenderer
	store       *mockStore
}

var fixedNow = time.Date(2026, 3, 7, 14, 30, 0, 0, time.UTC)

func newTestEnv() *testEnv {
	courses := newMockCourseRepo()
	env := &testEnv{
		cfg: &config.Config{
			Server: config.ServerConfig{BaseURL: "https://api.example.com/"},
			Certificate: config.CertificateConfig{
				Issuer:     "E-Learning Platform",
				DateFormat: "02.01.2006",
			},
		},
		users:       newMockUserRepo(),
		courses:     courses,
		videos:      newMockVideoRepo(),
		enrollments: newMockEnrollmentRepo(courses),
		progress:    newMockProgressRepo(),
		certs:       newMockCertificateRepo(courses),
		renderer:    &mockRenderer{},
		store:       newMockStore(),
	}
	env.repo = &repository.Repository{
		User:        env.users,
		Course:      env.courses,
		Video:       env.videos,
		Enrollment:  env.enrollments,
		Progress:    env.progress,
		Certificate: env.certs,
	}
	return env
}

func (e *testEnv) certificateService() *certificateService {
	completion := NewCompletionService(e.repo, zap.NewNop())
	svc := NewCertificateService(e.cfg, e.repo, completion, e.renderer, e.store, zap.NewNop()).(*certificateService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// enroll 直接写入报名记录
func (e *testEnv) enroll(t *testing.T, studentID, courseID string) {
	t.Helper()
	svc := NewEnrollmentService(e.repo, zap.NewNop())
	if _, err := svc.Enroll(context.Background(), studentID, "student", courseID); err != nil {
		t.Fatalf("报名失败: %v", err)
	}
}

// watch 标记若干视频为已观看
func (e *testEnv) watch(t *testing.T, studentID string, videoIDs ...string) {
	t.Helper()
	svc := NewProgressService(e.repo, zap.NewNop())
	for _, id := range videoIDs {
		if _, err := svc.MarkWatched(context.Background(), studentID, id); err != nil {
			t.Fatalf("标记观看失败: %v", err)
		}
	}
}

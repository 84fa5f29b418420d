package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"elearn/backend/internal/model"
)

// ── Enroll 测试 ──

func TestEnrollmentService_Enroll_Idempotent(t *testing.T) {
	env := newTestEnv()
	svc := NewEnrollmentService(env.repo, zap.NewNop())

	first, err := svc.Enroll(context.Background(), testStudentID, model.RoleStudent, testCourseID)
	if err != nil {
		t.Fatalf("Enroll 应成功: %v", err)
	}
	if !first.Enrolled || !first.Created {
		t.Errorf("首次报名期望 enrolled=true created=true，实际 %+v", first)
	}

	second, err := svc.Enroll(context.Background(), testStudentID, model.RoleStudent, testCourseID)
	if err != nil {
		t.Fatalf("重复报名应成功: %v", err)
	}
	if !second.Enrolled || second.Created {
		t.Errorf("重复报名期望 enrolled=true created=false，实际 %+v", second)
	}
}

func TestEnrollmentService_Enroll_NotStudent(t *testing.T) {
	env := newTestEnv()
	svc := NewEnrollmentService(env.repo, zap.NewNop())

	for _, role := range []string{model.RoleTeacher, model.RoleAdmin, ""} {
		_, err := svc.Enroll(context.Background(), testTeacherID, role, testCourseID)
		if !errors.Is(err, ErrNotStudent) {
			t.Errorf("角色 %q 期望 ErrNotStudent，实际: %v", role, err)
		}
	}
}

func TestEnrollmentService_Enroll_CourseNotFound(t *testing.T) {
	env := newTestEnv()
	svc := NewEnrollmentService(env.repo, zap.NewNop())

	_, err := svc.Enroll(context.Background(), testStudentID, model.RoleStudent, testMissingID)
	if !errors.Is(err, ErrCourseNotFound) {
		t.Errorf("期望 ErrCourseNotFound，实际: %v", err)
	}
}

func TestEnrollmentService_ListEnrolledCourses(t *testing.T) {
	env := newTestEnv()
	svc := NewEnrollmentService(env.repo, zap.NewNop())

	list, err := svc.ListEnrolledCourses(context.Background(), testStudentID)
	if err != nil {
		t.Fatalf("ListEnrolledCourses 应成功: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("未报名时期望空数组，实际 %v", list)
	}

	env.enroll(t, testStudentID, testCourseID)
	list, _ = svc.ListEnrolledCourses(context.Background(), testStudentID)
	if len(list) != 1 {
		t.Fatalf("期望 1 门课程，实际 %d", len(list))
	}
	if list[0].Title != "Go Concurrency" || list[0].TeacherID != testTeacherID {
		t.Errorf("课程信息不符: %+v", list[0])
	}
}

package service

import (
	"testing"

	"feedback/internal/repository"
	"feedback/internal/testutil"
)

// testEnv wires the full service stack against a containerized database
type testEnv struct {
	fixtures *testutil.Fixtures
	users    *UserService
	criteria *CriteriaService
	reviews  *ReviewService
	sheets   *SheetService
	answers  *AnswerService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tc := testutil.SetupTestContainers(t)
	t.Cleanup(func() { tc.Cleanup(t) })

	fixtures := testutil.SetupFixtures(t, tc.DB)

	userRepo := repository.NewUserRepository(tc.DB)
	jobRoleRepo := repository.NewJobRoleRepository(tc.DB)
	criteriaRepo := repository.NewCriteriaRepository(tc.DB)
	reviewRepo := repository.NewReviewRepository(tc.DB)
	sheetRepo := repository.NewSheetRepository(tc.DB)
	answerRepo := repository.NewAnswerRepository(tc.DB)
	sheetAnswerRepo := repository.NewSheetAnswerRepository(tc.DB)
	selfReviewRepo := repository.NewSelfReviewRepository(tc.DB)
	auditRepo := repository.NewAuditRepository(tc.DB)

	auditService := NewAuditService(auditRepo)
	users := NewUserService(userRepo, jobRoleRepo, auditService)
	criteria := NewCriteriaService(jobRoleRepo, criteriaRepo, auditService)
	reviews := NewReviewService(tc.DB, reviewRepo, sheetRepo, answerRepo, sheetAnswerRepo, selfReviewRepo, userRepo, criteriaRepo, auditService)
	sheets := NewSheetService(tc.DB, sheetRepo, reviewRepo, answerRepo, sheetAnswerRepo, userRepo, criteriaRepo, jobRoleRepo, auditService, reviews)
	answers := NewAnswerService(answerRepo, sheetAnswerRepo, sheetRepo, reviewRepo, userRepo, criteriaRepo, auditService, reviews)

	return &testEnv{
		fixtures: fixtures,
		users:    users,
		criteria: criteria,
		reviews:  reviews,
		sheets:   sheets,
		answers:  answers,
	}
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	appErrors "github.com/junyours/occ-admission-sub002/pkg/errors"
	"github.com/junyours/occ-admission-sub002/pkg/paging"
)

type mockRegistrationRepo struct {
	registrations []models.ArchivedRegistration
	restored      []string
}

func (m *mockRegistrationRepo) ListArchived(ctx context.Context, query string) ([]models.ArchivedRegistration, error) {
	if query == "" {
		return m.registrations, nil
	}
	out := make([]models.ArchivedRegistration, 0)
	for _, reg := range m.registrations {
		if strings.Contains(strings.ToLower(reg.ExamineeName), strings.ToLower(query)) {
			out = append(out, reg)
		}
	}
	return out, nil
}

func (m *mockRegistrationRepo) Unarchive(ctx context.Context, id string) error {
	for _, reg := range m.registrations {
		if reg.ID == id {
			m.restored = append(m.restored, id)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (m *mockRegistrationRepo) BulkUnarchive(ctx context.Context, ids []string) (int, error) {
	count := 0
	for _, id := range ids {
		if err := m.Unarchive(ctx, id); err == nil {
			count++
		}
	}
	return count, nil
}

func newArchiveFixture() (*ArchiveService, *mockRegistrationRepo, *mockAuditWriter) {
	repo := &mockRegistrationRepo{}
	audit := &mockAuditWriter{}
	svc := NewArchiveService(repo, audit, nil, nil, nil)
	return svc, repo, audit
}

func seedArchive(repo *mockRegistrationRepo, n int, date string, session models.ExamSession) {
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("reg-%s-%d", session, len(repo.registrations))
		repo.registrations = append(repo.registrations, models.ArchivedRegistration{
			ID:               id,
			ExamineeName:     fmt.Sprintf("Examinee %d", len(repo.registrations)),
			SchoolName:       "Sample High",
			RegistrationDate: date,
			AssignedExamDate: &date,
			AssignedSession:  &session,
			Status:           models.RegistrationStatusArchived,
		})
	}
}

func TestArchiveServiceListGroupsAndPaginates(t *testing.T) {
	svc, repo, _ := newArchiveFixture()
	seedArchive(repo, 8, "2025-06-10", models.SessionMorning)
	seedArchive(repo, 3, "2025-06-12", models.SessionAfternoon)
	seedArchive(repo, 2, "2024-11-05", models.SessionMorning)

	years, err := svc.List(context.Background(), models.ArchiveFilter{Page: 1, PerPage: 5})
	require.NoError(t, err)
	require.Len(t, years, 2)
	assert.Equal(t, 2025, years[0].Year)
	assert.Equal(t, 2024, years[1].Year)

	june := years[0].Months[0]
	require.Len(t, june.Sessions, 2)
	assert.Equal(t, models.SessionMorning, june.Sessions[0].Session)
	assert.Len(t, june.Sessions[0].Registrations, 5)
	assert.Equal(t, 8, june.Sessions[0].Pagination.Total)
	assert.Equal(t, 2, june.Sessions[0].Pagination.LastPage)
}

func TestArchiveServiceListShowAll(t *testing.T) {
	svc, repo, _ := newArchiveFixture()
	seedArchive(repo, 8, "2025-06-10", models.SessionMorning)

	years, err := svc.List(context.Background(), models.ArchiveFilter{Page: 1, PerPage: paging.ShowAll})
	require.NoError(t, err)
	session := years[0].Months[0].Sessions[0]
	assert.Len(t, session.Registrations, 8)
	assert.Equal(t, 1, session.Pagination.LastPage)
}

func TestArchiveServiceBulkUnarchive(t *testing.T) {
	svc, repo, audit := newArchiveFixture()
	seedArchive(repo, 3, "2025-06-10", models.SessionMorning)

	result, err := svc.BulkUnarchive(context.Background(), "u1", dto.BulkUnarchiveRequest{
		RegistrationIDs: []string{repo.registrations[0].ID, repo.registrations[1].ID, "ghost"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Restored)
	assert.Len(t, repo.restored, 2)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionRegistrationUnarchive, audit.logs[0].Action)
}

func TestArchiveServiceBulkUnarchiveRequiresIDs(t *testing.T) {
	svc, _, _ := newArchiveFixture()

	_, err := svc.BulkUnarchive(context.Background(), "u1", dto.BulkUnarchiveRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestArchiveServiceUnarchiveNotFound(t *testing.T) {
	svc, _, _ := newArchiveFixture()

	err := svc.Unarchive(context.Background(), "u1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestArchiveServiceExportCSV(t *testing.T) {
	svc, repo, _ := newArchiveFixture()
	seedArchive(repo, 2, "2025-06-10", models.SessionMorning)

	payload, err := svc.ExportCSV(context.Background(), "")
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Examinee")
	assert.Contains(t, content, "Sample High")
	assert.Contains(t, content, "2025-06-10")
}

func TestArchiveServiceExportPDF(t *testing.T) {
	svc, repo, _ := newArchiveFixture()
	seedArchive(repo, 2, "2025-06-10", models.SessionMorning)

	payload, err := svc.ExportPDF(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestArchiveServiceRestoreInvalidatesScheduleCache(t *testing.T) {
	repo := &mockRegistrationRepo{}
	invalidations := 0
	svc := NewArchiveService(repo, nil, nil, nil, func(ctx context.Context) { invalidations++ })
	seedArchive(repo, 2, "2025-03-03", models.SessionMorning)

	require.NoError(t, svc.Unarchive(context.Background(), "u1", repo.registrations[0].ID))
	assert.Equal(t, 1, invalidations)

	result, err := svc.BulkUnarchive(context.Background(), "u1", dto.BulkUnarchiveRequest{
		RegistrationIDs: []string{repo.registrations[1].ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	assert.Equal(t, 2, invalidations)

	// Restoring nothing must not drop the cache.
	result, err = svc.BulkUnarchive(context.Background(), "u1", dto.BulkUnarchiveRequest{
		RegistrationIDs: []string{"ghost"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Restored)
	assert.Equal(t, 2, invalidations)
}

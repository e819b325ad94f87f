package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junyours/occ-admission-sub002/internal/dto"
	"github.com/junyours/occ-admission-sub002/internal/models"
	"github.com/junyours/occ-admission-sub002/internal/service"
)

type registrationRepoStub struct {
	archived   []models.ArchivedRegistration
	restored   int
	lastSearch string
}

func (s *registrationRepoStub) ListArchived(ctx context.Context, query string) ([]models.ArchivedRegistration, error) {
	s.lastSearch = query
	return s.archived, nil
}

func (s *registrationRepoStub) Unarchive(ctx context.Context, id string) error { return nil }

func (s *registrationRepoStub) BulkUnarchive(ctx context.Context, ids []string) (int, error) {
	return s.restored, nil
}

func newArchiveHandlerFixture(repo *registrationRepoStub) *ArchiveHandler {
	svc := service.NewArchiveService(repo, nil, nil, nil, nil)
	return NewArchiveHandler(svc, nil)
}

func TestArchiveHandlerListPassesSearch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &registrationRepoStub{
		archived: []models.ArchivedRegistration{
			{ID: "a1", ExamineeName: "Dela Cruz, Juan", RegistrationDate: "2025-02-10", Status: models.RegistrationStatusArchived},
		},
	}
	handler := newArchiveHandlerFixture(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/guidance/archived-registrations?search=cruz", nil)
	c.Request = req

	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cruz", repo.lastSearch)

	var envelope struct {
		Data []dto.ArchiveYearGroup `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, 2025, envelope.Data[0].Year)
	assert.Contains(t, envelope.Meta, "per_page_options")
}

func TestArchiveHandlerBulkUnarchiveInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newArchiveHandlerFixture(&registrationRepoStub{})
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/guidance/archived-registrations/bulk-unarchive", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.BulkUnarchive(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveHandlerUnarchiveReportsRestoredCount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &registrationRepoStub{restored: 2}
	handler := newArchiveHandlerFixture(repo)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(dto.BulkUnarchiveRequest{RegistrationIDs: []string{"a1", "a2"}})
	req, _ := http.NewRequest(http.MethodPost, "/guidance/archived-registrations/bulk-unarchive", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.BulkUnarchive(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Restored int `json:"restored"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Restored)
}

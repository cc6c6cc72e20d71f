package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ocrapi/internal/model"
	"ocrapi/internal/queue"
	"ocrapi/internal/service"
	serviceMocks "ocrapi/internal/service/mocks"
	"ocrapi/internal/storage"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(fakePinger{}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		app := fiber.New()
		app.Get("/health", HealthCheck(fakePinger{err: errors.New("bucket unreachable")}))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockLifecycleService)
	app := fiber.New()
	app.Post("/documents/:id", CreateDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &model.Record{DocumentID: "doc-1", FileName: "scan.pdf", Status: model.StatusNew}
		mockSvc.On("Create", mock.Anything, mock.MatchedBy(func(req service.CreateRequest) bool {
			return req.DocumentID == "doc-1" && req.FileName == "scan.pdf" &&
				req.UserID == "u-1" && req.SiteID == "s-1" && req.Size == 5
		})).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/doc-1", strings.NewReader("%PDF-"))
		req.Header.Set(fiber.HeaderContentType, "application/pdf")
		req.Header.Set(HeaderFileName, "scan.pdf")
		req.Header.Set(HeaderUserID, "u-1")
		req.Header.Set(HeaderSiteID, "s-1")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var result model.Record
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "doc-1", result.DocumentID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/documents/doc-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "BODY_REQUIRED", res.Error.Code)
	})

	t.Run("conflict", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrConflict).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/doc-1", strings.NewReader("body"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "ALREADY_EXISTS", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("store down")).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/doc-1", strings.NewReader("body"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockLifecycleService)
	app := fiber.New()
	app.Put("/documents/:id", UpdateDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		expected := &model.Record{DocumentID: "doc-1", Status: model.StatusNew}
		mockSvc.On("Update", mock.Anything, mock.Anything).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/doc-1", strings.NewReader("v2"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Update", mock.Anything, mock.Anything).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodPut, "/documents/ghost", strings.NewReader("v2"))
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestHeadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockLifecycleService)
	app := fiber.New()
	app.Head("/documents/:id", HeadDocument(mockSvc))

	t.Run("record fields travel as headers", func(t *testing.T) {
		mockSvc.On("Metadata", mock.Anything, "doc-1").Return(&model.Record{
			DocumentID:  "doc-1",
			FileName:    "scan.pdf",
			ContentType: "application/pdf",
			UserID:      "u-1",
			SiteID:      "s-1",
			Status:      model.StatusSubmitted,
			JobID:       "job-77",
			Size:        42,
		}, nil).Once()

		req := httptest.NewRequest(http.MethodHead, "/documents/doc-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "scan.pdf", resp.Header.Get(HeaderFileName))
		assert.Equal(t, "Submitted", resp.Header.Get(HeaderStatus))
		assert.Equal(t, "job-77", resp.Header.Get(HeaderJobID))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Metadata", mock.Anything, "ghost").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodHead, "/documents/ghost", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockLifecycleService)
	app := fiber.New()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("streams the body", func(t *testing.T) {
		rec := &model.Record{DocumentID: "doc-1", FileName: "scan.pdf", ContentType: "application/pdf", Size: 7}
		body := io.NopCloser(strings.NewReader("payload"))
		mockSvc.On("Document", mock.Anything, "doc-1").Return(body, rec, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/doc-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "payload", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Document", mock.Anything, "ghost").Return(nil, nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/ghost", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDocumentStatus(t *testing.T) {
	mockSvc := new(serviceMocks.MockLifecycleService)
	app := fiber.New()
	app.Get("/documents/:id/status", DocumentStatus(mockSvc))

	t.Run("known status", func(t *testing.T) {
		mockSvc.On("Status", mock.Anything, "doc-1").
			Return(&service.StatusResult{DocumentID: "doc-1", Status: model.StatusSucceeded}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/doc-1/status", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body service.StatusResult
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, model.StatusSucceeded, body.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("absent document reads unknown", func(t *testing.T) {
		mockSvc.On("Status", mock.Anything, "ghost").
			Return(&service.StatusResult{DocumentID: "ghost", Status: model.StatusUnknown}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents/ghost/status", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body service.StatusResult
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, model.StatusUnknown, body.Status)
		mockSvc.AssertExpectations(t)
	})
}

func TestFetchResult(t *testing.T) {
	mockSvc := new(serviceMocks.MockResultService)
	app := fiber.New()
	app.Get("/results/:id", FetchResult(mockSvc))

	t.Run("inline body", func(t *testing.T) {
		mockSvc.On("Fetch", mock.Anything, "doc-1", "text/plain").Return(&service.FetchResult{
			Body: io.NopCloser(strings.NewReader("hello")),
			Info: storage.ObjectInfo{Key: "doc-1.txt", Size: 5, ContentType: "text/plain; charset=utf-8"},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/results/doc-1", nil)
		req.Header.Set(fiber.HeaderAccept, "text/plain")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "hello", string(b))
		mockSvc.AssertExpectations(t)
	})

	t.Run("large artifact redirects", func(t *testing.T) {
		mockSvc.On("Fetch", mock.Anything, "doc-1", "").Return(&service.FetchResult{
			Redirect: true,
			Location: "https://store.local/doc-1.json?sig=abc",
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/results/doc-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://store.local/doc-1.json?sig=abc", resp.Header.Get(fiber.HeaderLocation))
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Fetch", mock.Anything, "ghost", "").Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/results/ghost", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestPresignUpload(t *testing.T) {
	mockSvc := new(serviceMocks.MockLifecycleService)
	app := fiber.New()
	app.Get("/uploads/:id/url", PresignUpload(mockSvc))

	mockSvc.On("UploadURL", mock.Anything, "doc-1").Return(&service.UploadDescriptor{
		DocumentID:   "doc-1",
		URL:          "https://store.local/doc-1?sig=abc",
		ExpiresInSec: 120,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/uploads/doc-1/url", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var desc service.UploadDescriptor
	json.NewDecoder(resp.Body).Decode(&desc)
	assert.Equal(t, 120, desc.ExpiresInSec)
	mockSvc.AssertExpectations(t)
}

func TestNotification(t *testing.T) {
	mockSvc := new(serviceMocks.MockCompletionService)
	app := fiber.New()
	app.Post("/notifications", Notification(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Complete", mock.Anything, "doc-1", "SUCCEEDED").
			Return(model.ParseTerminalStatus("SUCCEEDED"), nil).Once()

		payload, err := queue.EncodeMessage(queue.CompletionMessage{
			JobID:  "job-77",
			Status: "SUCCEEDED",
			JobTag: "doc-1",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(string(payload)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed message", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(`{"Status":"SUCCEEDED"}`))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_MESSAGE", res.Error.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		mockSvc.On("Complete", mock.Anything, "doc-1", "PARTIAL").
			Return(model.ParseTerminalStatus("PARTIAL"), service.ErrUnknownTerminalStatus).Once()

		payload, _ := queue.EncodeMessage(queue.CompletionMessage{JobID: "job-77", Status: "PARTIAL", JobTag: "doc-1"})
		req := httptest.NewRequest(http.MethodPost, "/notifications", strings.NewReader(string(payload)))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "UNKNOWN_STATUS", res.Error.Code)
		mockSvc.AssertExpectations(t)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, fakePinger{},
		new(serviceMocks.MockLifecycleService),
		new(serviceMocks.MockCompletionService),
		new(serviceMocks.MockResultService),
	)

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "METHOD_NOT_ALLOWED", res.Error.Code)
	})
}

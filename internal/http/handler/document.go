package handler

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/service"
)

// Provenance headers read from document write requests. Absent headers fall
// back to service-level defaults.
const (
	HeaderFileName = "File-Name"
	HeaderUserID   = "User-Id"
	HeaderSiteID   = "Site-Id"

	// HeaderStatus and HeaderJobID expose the lifecycle tags on HEAD responses.
	HeaderStatus = "Ocr-Status"
	HeaderJobID  = "Job-Id"
)

func createRequestFromCtx(c *fiber.Ctx) service.CreateRequest {
	body := c.Body()
	return service.CreateRequest{
		DocumentID:  c.Params("id"),
		Body:        bytes.NewReader(body),
		Size:        int64(len(body)),
		FileName:    c.Get(HeaderFileName),
		ContentType: c.Get(fiber.HeaderContentType),
		UserID:      c.Get(HeaderUserID),
		SiteID:      c.Get(HeaderSiteID),
	}
}

// CreateDocument stores a new document body under the id in the path. An id
// that already has a record is a conflict.
func CreateDocument(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return writeError(c, fiber.StatusBadRequest, "BODY_REQUIRED", "request body is required")
		}
		rec, err := svc.Create(c.UserContext(), createRequestFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	}
}

// UpdateDocument replaces an existing document's body and metadata and resets
// its status to New.
func UpdateDocument(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return writeError(c, fiber.StatusBadRequest, "BODY_REQUIRED", "request body is required")
		}
		rec, err := svc.Update(c.UserContext(), createRequestFromCtx(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// HeadDocument answers existence checks: record fields travel as headers, no
// body.
func HeadDocument(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.Metadata(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, rec.ContentType)
		c.Set(fiber.HeaderContentLength, strconv.FormatInt(rec.Size, 10))
		c.Set(HeaderFileName, rec.FileName)
		c.Set(HeaderUserID, rec.UserID)
		c.Set(HeaderSiteID, rec.SiteID)
		c.Set(HeaderStatus, string(rec.Status))
		if rec.JobID != "" {
			c.Set(HeaderJobID, rec.JobID)
		}
		return c.SendStatus(fiber.StatusOK)
	}
}

// GetDocumentMetadata returns the assembled record as JSON.
func GetDocumentMetadata(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.Metadata(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(rec)
	}
}

// GetDocument streams the stored document body.
func GetDocument(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, rec, err := svc.Document(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		c.Set(fiber.HeaderContentType, rec.ContentType)
		c.Set(HeaderFileName, rec.FileName)
		if rec.Size >= 0 {
			return c.SendStream(body, int(rec.Size))
		}
		return c.SendStream(body)
	}
}

// DocumentStatus reports the lifecycle status. Every absence condition reads
// as Unknown with a 200, so the endpoint never reveals whether the record
// exists.
func DocumentStatus(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.Status(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// PresignUpload hands out a time-limited direct-upload URL so large documents
// bypass the API body limit.
func PresignUpload(svc service.LifecycleService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		desc, err := svc.UploadURL(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(desc)
	}
}

package handler

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/kotoba-app/kotoba/biz/model/api"
	"github.com/kotoba-app/kotoba/biz/service/gateway"
	"github.com/kotoba-app/kotoba/pkg/storage"
)

// StorageHandler exposes the object storage gateway endpoints.
type StorageHandler struct {
	service *gateway.Service
}

func NewStorageHandler(service *gateway.Service) *StorageHandler {
	return &StorageHandler{service: service}
}

// SignUpload issues an upload target URL for a single key.
func (h *StorageHandler) SignUpload(ctx context.Context, c *app.RequestContext) {
	var req api.SignUploadRequest
	if err := c.BindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	target, err := h.service.IssueUploadTarget(req.Path, req.ContentType)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, api.SignUploadResponse{URL: target})
}

// SignUploadBatch issues upload targets for several keys in one round trip.
func (h *StorageHandler) SignUploadBatch(ctx context.Context, c *app.RequestContext) {
	var req api.SignUploadBatchRequest
	if err := c.BindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	urls, err := h.service.IssueUploadTargets(req.Items)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, api.SignUploadBatchResponse{URLs: urls})
}

// Upload receives a byte stream for the key named in the query and stores it
// as a single object.
func (h *StorageHandler) Upload(ctx context.Context, c *app.RequestContext) {
	key := c.Query("key")
	contentType := c.Query("ct")

	size := int64(c.Request.Header.ContentLength())
	if size < 0 {
		size = 0
	}

	if err := h.service.Upload(ctx, key, contentType, c.Request.BodyStream(), size); err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, api.UploadResponse{OK: true, Key: strings.TrimSpace(key)})
}

// MultipartInit starts a multipart upload session.
func (h *StorageHandler) MultipartInit(ctx context.Context, c *app.RequestContext) {
	var req api.MultipartInitRequest
	if err := c.BindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	uploadID, err := h.service.InitMultipart(ctx, req.Key, req.ContentType)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, api.MultipartInitResponse{UploadID: uploadID, Key: req.Key})
}

// MultipartPart uploads one chunk of an active session.
func (h *StorageHandler) MultipartPart(ctx context.Context, c *app.RequestContext) {
	key := c.Query("key")
	uploadID := c.Query("uploadId")
	partNumber, err := strconv.Atoi(c.Query("partNumber"))
	if err != nil {
		writeBadRequest(c, errors.New("partNumber must be a positive integer"))
		return
	}

	size := int64(c.Request.Header.ContentLength())
	if size < 0 {
		size = 0
	}

	etag, err := h.service.UploadMultipartPart(ctx, key, uploadID, int32(partNumber), c.Request.BodyStream(), size)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, api.MultipartPartResponse{ETag: etag, PartNumber: int32(partNumber)})
}

// MultipartComplete assembles the final object from the submitted parts.
func (h *StorageHandler) MultipartComplete(ctx context.Context, c *app.RequestContext) {
	var req api.MultipartCompleteRequest
	if err := c.BindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	if err := h.service.CompleteMultipart(ctx, req.Key, req.UploadID, req.Parts); err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, api.OKResponse{OK: true, Key: req.Key})
}

// MultipartAbort discards a session and its uploaded parts.
func (h *StorageHandler) MultipartAbort(ctx context.Context, c *app.RequestContext) {
	var req api.MultipartAbortRequest
	if err := c.BindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	if err := h.service.AbortMultipart(ctx, req.Key, req.UploadID); err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, api.OKResponse{OK: true})
}

// List enumerates keys under a prefix: a one-level tree view by default, or
// a flat cursor-paginated stream with flat=1.
func (h *StorageHandler) List(ctx context.Context, c *app.RequestContext) {
	prefix := c.Query("prefix")
	cursor := c.Query("cursor")
	limit := gateway.ClampLimit(c.Query("limit"))

	if c.Query("flat") == "1" {
		listing, err := h.service.ListFlat(ctx, prefix, cursor, limit)
		if err != nil {
			writeStorageError(c, err)
			return
		}
		c.JSON(consts.StatusOK, listing)
		return
	}

	paged := c.Query("paged") == "1"
	listing, err := h.service.ListTree(ctx, prefix, paged, cursor, limit)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	c.JSON(consts.StatusOK, listing)
}

// Delete removes a single object, or guards/recurses over a prefix when the
// key carries a trailing separator.
func (h *StorageHandler) Delete(ctx context.Context, c *app.RequestContext) {
	key := c.Query("key")
	if strings.TrimSpace(key) == "" {
		writeBadRequest(c, errors.New("key is required"))
		return
	}

	if !strings.HasSuffix(key, storage.Delimiter) {
		if err := h.service.Delete(ctx, key); err != nil {
			writeStorageError(c, err)
			return
		}
		c.JSON(consts.StatusOK, api.OKResponse{OK: true})
		return
	}

	recursive := c.Query("recursive") == "1" || c.Query("recursive") == "true"
	concurrency := gateway.ClampConcurrency(c.Query("c"))

	result, err := h.service.DeletePrefix(ctx, key, recursive, concurrency)
	if err != nil {
		writeStorageError(c, err)
		return
	}
	if !recursive {
		c.JSON(consts.StatusOK, api.OKResponse{OK: true})
		return
	}
	c.JSON(consts.StatusOK, api.DeleteResponse{
		OK:          true,
		Deleted:     result.Deleted,
		Failed:      result.Failed,
		Concurrency: result.Concurrency,
	})
}

// Raw streams a stored object back through the same-origin display URL
// fallback.
func (h *StorageHandler) Raw(ctx context.Context, c *app.RequestContext) {
	reader, err := h.service.Fetch(ctx, c.Query("key"))
	if err != nil {
		writeStorageError(c, err)
		return
	}
	defer reader.Close()

	body, err := io.ReadAll(reader)
	if err != nil {
		writeInternalError(c, err)
		return
	}
	c.Data(consts.StatusOK, gateway.DefaultContentType, body)
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/kotoba-app/kotoba/biz/model/api"
	"github.com/kotoba-app/kotoba/biz/service/library"
	"github.com/kotoba-app/kotoba/pkg/common"
)

// LibraryHandler exposes the media reference registry endpoints.
type LibraryHandler struct {
	service *library.Service
}

func NewLibraryHandler(service *library.Service) *LibraryHandler {
	return &LibraryHandler{service: service}
}

// RegisterMedia records a key reference after a successful upload.
func (h *LibraryHandler) RegisterMedia(ctx context.Context, c *app.RequestContext) {
	var req api.RegisterMediaRequest
	if err := c.BindJSON(&req); err != nil {
		writeBadRequest(c, err)
		return
	}
	asset, err := h.service.RegisterMedia(ctx, &req)
	if err != nil {
		if errors.Is(err, library.ErrMediaNotFound) {
			writeNotFound(c, err)
			return
		}
		writeBadRequest(c, err)
		return
	}
	c.JSON(consts.StatusOK, common.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{"media": asset},
	})
}

// ListMedia returns a deck's media references.
func (h *LibraryHandler) ListMedia(ctx context.Context, c *app.RequestContext) {
	deckKey := strings.TrimSpace(c.Query("deck_key"))
	if deckKey == "" {
		writeBadRequest(c, errors.New("deck_key is required"))
		return
	}
	assets, err := h.service.ListMedia(ctx, deckKey)
	if err != nil {
		writeInternalError(c, err)
		return
	}
	c.JSON(consts.StatusOK, common.CommonResponse{
		Code: consts.StatusOK,
		Data: map[string]any{"media": assets},
	})
}

// GetMediaFile streams stored media content back to the client.
func (h *LibraryHandler) GetMediaFile(ctx context.Context, c *app.RequestContext) {
	fileID := c.Param("fileID")
	asset, reader, err := h.service.GetMediaFile(ctx, fileID)
	if err != nil {
		if errors.Is(err, library.ErrMediaNotFound) {
			writeNotFound(c, err)
			return
		}
		writeInternalError(c, err)
		return
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		writeInternalError(c, err)
		return
	}

	contentType := asset.ContentType
	if contentType == "" {
		contentType = consts.MIMEApplicationOctetStream
	}
	if asset.FileName != "" {
		c.Response.Header.Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", asset.FileName))
	}
	c.Data(consts.StatusOK, contentType, content)
}

// RemoveMedia deletes the stored object and its reference row.
func (h *LibraryHandler) RemoveMedia(ctx context.Context, c *app.RequestContext) {
	fileID := c.Param("fileID")
	if err := h.service.RemoveMedia(ctx, fileID); err != nil {
		if errors.Is(err, library.ErrMediaNotFound) {
			writeNotFound(c, err)
			return
		}
		writeInternalError(c, err)
		return
	}
	c.JSON(consts.StatusOK, common.CommonResponse{Code: consts.StatusOK})
}

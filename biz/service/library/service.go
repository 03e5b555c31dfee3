// Package library records key references written back by clients after a
// successful storage operation, and serves stored media through the
// same-origin proxy path. It is a collaborator of the gateway, not part of
// it: the gateway never consults the library.
package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kotoba-app/kotoba/biz/dal/db"
	"github.com/kotoba-app/kotoba/biz/dal/model"
	"github.com/kotoba-app/kotoba/biz/model/api"
	"github.com/kotoba-app/kotoba/pkg/storage"
)

var ErrMediaNotFound = errors.New("media not found")

// Service orchestrates library media operations.
type Service struct {
	db       *gorm.DB
	mediaDAO *db.MediaDAO
	store    storage.Storage
}

func NewService(dbConn *gorm.DB, store storage.Storage) *Service {
	return &Service{
		db:       dbConn,
		mediaDAO: db.NewMediaDAO(),
		store:    store,
	}
}

// RegisterMedia records a key reference after the client finished writing
// the object through the gateway. The object must exist; a reference to a
// missing key is rejected.
func (s *Service) RegisterMedia(ctx context.Context, req *api.RegisterMediaRequest) (*api.MediaAsset, error) {
	if req == nil {
		return nil, errors.New("request required")
	}
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, errors.New("key is required")
	}
	if strings.TrimSpace(req.DeckKey) == "" {
		return nil, errors.New("deck_key is required")
	}

	exists, err := s.store.ObjectExists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check object: %w", err)
	}
	if !exists {
		return nil, ErrMediaNotFound
	}

	fileName := req.FileName
	if fileName == "" {
		fileName = key[strings.LastIndex(key, "/")+1:]
	}

	url, err := s.store.GenerateURL(ctx, key, fileName)
	if err != nil {
		return nil, fmt.Errorf("generate url: %w", err)
	}

	asset := &model.MediaAsset{
		FileID:      uuid.NewString(),
		DeckKey:     req.DeckKey,
		Key:         key,
		FileName:    fileName,
		ContentType: req.ContentType,
		FileSize:    req.FileSize,
		URL:         url,
		Remark:      req.Remark,
	}
	if err := s.mediaDAO.Create(ctx, s.db, asset); err != nil {
		return nil, err
	}

	return assetToAPI(asset), nil
}

// ListMedia returns the deck's media references, newest first.
func (s *Service) ListMedia(ctx context.Context, deckKey string) ([]*api.MediaAsset, error) {
	deckKey = strings.TrimSpace(deckKey)
	if deckKey == "" {
		return nil, errors.New("deck_key is required")
	}
	assets, err := s.mediaDAO.ListByDeck(ctx, s.db, deckKey)
	if err != nil {
		return nil, err
	}
	result := make([]*api.MediaAsset, 0, len(assets))
	for i := range assets {
		result = append(result, assetToAPI(&assets[i]))
	}
	return result, nil
}

// GetMediaFile streams stored media content back to the client. The
// returned ReadCloser must be closed by the caller.
func (s *Service) GetMediaFile(ctx context.Context, fileID string) (*model.MediaAsset, io.ReadCloser, error) {
	if fileID == "" {
		return nil, nil, ErrMediaNotFound
	}
	asset, err := s.mediaDAO.GetByFileID(ctx, s.db, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMediaNotFound
		}
		return nil, nil, err
	}

	reader, err := s.store.GetObject(ctx, asset.Key)
	if err != nil {
		return nil, nil, fmt.Errorf("get media: %w", err)
	}

	return asset, reader, nil
}

// RemoveMedia deletes the stored object and its reference row.
func (s *Service) RemoveMedia(ctx context.Context, fileID string) error {
	asset, err := s.mediaDAO.GetByFileID(ctx, s.db, fileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaNotFound
		}
		return err
	}

	if err := s.store.DeleteObject(ctx, asset.Key); err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return s.mediaDAO.DeleteByFileID(ctx, s.db, fileID)
}

func assetToAPI(asset *model.MediaAsset) *api.MediaAsset {
	if asset == nil {
		return nil
	}
	out := &api.MediaAsset{
		FileID:      asset.FileID,
		DeckKey:     asset.DeckKey,
		Key:         asset.Key,
		FileName:    asset.FileName,
		ContentType: asset.ContentType,
		FileSize:    asset.FileSize,
		URL:         asset.URL,
		Remark:      asset.Remark,
	}
	if !asset.CreatedAt.IsZero() {
		out.CreatedAt = asset.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return out
}

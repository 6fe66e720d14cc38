package services

import (
	"context"
	"slices"
	"strings"

	"github.com/dmitrijs2005/vehiclereg/internal/logging"
	"github.com/dmitrijs2005/vehiclereg/internal/repositories/repomanager"
)

// Document describes one persisted key.
type Document struct {
	Key  string
	Size int
}

// StorageService inspects and wipes the persisted documents as a whole.
type StorageService struct {
	store storage
	log   logging.Logger
}

func NewStorageService(db Database, repos repomanager.RepositoryManager, log logging.Logger) *StorageService {
	return &StorageService{
		store: storage{db: db, repos: repos},
		log:   log.With("component", "storage"),
	}
}

// Documents lists every stored key with its encoded size, sorted by key.
func (s *StorageService) Documents(ctx context.Context) ([]Document, error) {
	all, err := s.store.repo().List(ctx)
	if err != nil {
		return nil, storageErr("list documents", err)
	}

	docs := make([]Document, 0, len(all))
	for k, v := range all {
		docs = append(docs, Document{Key: k, Size: len(v)})
	}
	slices.SortFunc(docs, func(a, b Document) int { return strings.Compare(a.Key, b.Key) })
	return docs, nil
}

// Reset deletes every stored document. The next first-launch check sees a
// fresh store.
func (s *StorageService) Reset(ctx context.Context) error {
	if err := s.store.repo().Clear(ctx); err != nil {
		s.log.Error(ctx, "reset failed", "error", err)
		return storageErr("clear documents", err)
	}
	s.log.Warn(ctx, "all stored documents removed")
	return nil
}

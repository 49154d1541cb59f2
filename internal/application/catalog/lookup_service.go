package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jewelry/backend/internal/domain/catalog"
	"github.com/jewelry/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LookupService manages metal types, stone types and occasions
type LookupService struct {
	lookupRepo  catalog.LookupRepository
	productRepo catalog.ProductRepository
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewLookupService creates a new LookupService
func NewLookupService(
	lookupRepo catalog.LookupRepository,
	productRepo catalog.ProductRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *LookupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LookupService{
		lookupRepo:  lookupRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// List returns every value of a kind ordered by name
func (s *LookupService) List(ctx context.Context, kind catalog.LookupKind) ([]LookupResponse, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOOKUP", "Unknown lookup type: "+string(kind))
	}
	values, err := s.lookupRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", kind, err)
	}
	out := make([]LookupResponse, len(values))
	for i, v := range values {
		out[i] = LookupResponse{ID: v.ID, Name: v.Name}
	}
	return out, nil
}

// Create adds a value; names are unique per kind, ignoring case
func (s *LookupService) Create(ctx context.Context, kind catalog.LookupKind, name string) (*LookupResponse, error) {
	lookup, err := catalog.NewLookup(kind, name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, kind, lookup.Name, 0); err != nil {
		return nil, err
	}
	if err := s.lookupRepo.Create(ctx, lookup); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, duplicateLookup(lookup.Name)
		}
		return nil, fmt.Errorf("failed to create %s: %w", kind, err)
	}
	lookup.MarkCreated()
	s.publish(ctx, lookup)
	s.logger.Info("Lookup created", zap.String("kind", string(kind)), zap.Int64("id", lookup.ID))
	return &LookupResponse{ID: lookup.ID, Name: lookup.Name}, nil
}

// Rename changes a value's display name
func (s *LookupService) Rename(ctx context.Context, kind catalog.LookupKind, id int64, name string) (*LookupResponse, error) {
	lookup, err := s.find(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if err := lookup.Rename(name); err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, kind, lookup.Name, id); err != nil {
		return nil, err
	}
	if err := s.lookupRepo.Update(ctx, lookup); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", kind, err)
	}
	s.publish(ctx, lookup)
	return &LookupResponse{ID: lookup.ID, Name: lookup.Name}, nil
}

// Delete removes a value that no product references
func (s *LookupService) Delete(ctx context.Context, kind catalog.LookupKind, id int64) error {
	lookup, err := s.find(ctx, kind, id)
	if err != nil {
		return err
	}
	count, err := s.productRepo.CountByLookup(ctx, kind, id)
	if err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return shared.NewDomainError("LOOKUP_IN_USE",
			fmt.Sprintf("%s is used by %d product(s)", lookup.Name, count))
	}
	if err := s.lookupRepo.Delete(ctx, kind, id); err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	lookup.MarkDeleted()
	s.publish(ctx, lookup)
	return nil
}

func (s *LookupService) ensureUnique(ctx context.Context, kind catalog.LookupKind, name string, excludeID int64) error {
	exists, err := s.lookupRepo.ExistsByName(ctx, kind, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check name: %w", err)
	}
	if exists {
		return duplicateLookup(name)
	}
	return nil
}

func (s *LookupService) find(ctx context.Context, kind catalog.LookupKind, id int64) (*catalog.Lookup, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_LOOKUP", "Unknown lookup type: "+string(kind))
	}
	lookup, err := s.lookupRepo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Lookup value not found")
		}
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	return lookup, nil
}

func (s *LookupService) publish(ctx context.Context, lookup *catalog.Lookup) {
	if err := shared.PublishAndClear(ctx, s.publisher, lookup); err != nil {
		s.logger.Warn("Failed to publish lookup events", zap.Error(err))
	}
}

func duplicateLookup(name string) error {
	return shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("%q already exists", name))
}

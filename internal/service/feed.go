package service

import (
	"context"
	"errors"
	"time"

	"github.com/mirrorops/storesync-worker/internal/models"
)

var ErrNoCredential = errors.New("shop has no access token")

// Record is implemented by every mirrored entity type.
type Record interface {
	RecordID() string
	RecordUpdatedAt() time.Time
}

// FeedFilter narrows a feed fetch to records updated after a point in time.
// A nil UpdatedAfter means an unfiltered (full) fetch.
type FeedFilter struct {
	UpdatedAfter *time.Time
}

// FeedPage is one page of records from the remote feed.
type FeedPage[T any] struct {
	Items      []T
	NextCursor string
	HasMore    bool
}

// StorefrontClient is the remote feed adapter: it yields pages of mirrored
// entities for a shop given a filter and a continuation cursor.
type StorefrontClient interface {
	FetchProducts(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Product], error)
	FetchOrders(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Order], error)
	FetchDiscounts(ctx context.Context, shop *models.Shop, filter FeedFilter, cursor string, pageSize int) (*FeedPage[models.Discount], error)
}

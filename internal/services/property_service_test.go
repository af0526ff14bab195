package services

import (
	"context"
	"errors"
	"testing"

	"property-market/internal/models"
	"property-market/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreatePropertyStartsPending(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPropertyService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")

	property, err := svc.CreateProperty(ctx, owner.ID, &models.CreatePropertyRequest{
		Title:   "Harbour Loft",
		Type:    "apartment",
		Price:   decimal.NewFromInt(420000),
		City:    "Rotterdam",
		Country: "NL",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusPending, property.Status)
	assert.Equal(t, "USD", property.Currency)
	assert.Contains(t, property.Slug, "harbour-loft")
	assert.NotEqual(t, uuid.Nil, property.PublicID)
}

func TestCreatePropertyRejectsNegativePrice(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPropertyService(repository.NewRepository(db))

	owner := createTestUser(t, db, "owner@example.com")

	_, err := svc.CreateProperty(context.Background(), owner.ID, &models.CreatePropertyRequest{
		Title:   "Harbour Loft",
		Type:    "apartment",
		Price:   decimal.NewFromInt(-1),
		City:    "Rotterdam",
		Country: "NL",
	})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestUpdatePropertyOwnershipAndRemoderation(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPropertyService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	property := createApprovedProperty(t, db, owner.ID)

	_, err := svc.UpdateProperty(ctx, stranger.ID, property.PublicID, &models.UpdatePropertyRequest{
		Title: strPtr("Hijacked"),
	})
	assert.True(t, errors.Is(err, ErrUnauthorized))

	// Editing an approved listing sends it back through moderation
	updated, err := svc.UpdateProperty(ctx, owner.ID, property.PublicID, &models.UpdatePropertyRequest{
		Title: strPtr("Canal House Deluxe"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Canal House Deluxe", updated.Title)
	assert.Equal(t, models.PropertyStatusPending, updated.Status)
	assert.Nil(t, updated.ApprovedAt)
}

func TestDeleteProperty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPropertyService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	stranger := createTestUser(t, db, "stranger@example.com")
	property := createApprovedProperty(t, db, owner.ID)

	err := svc.DeleteProperty(ctx, stranger.ID, property.PublicID)
	assert.True(t, errors.Is(err, ErrUnauthorized))

	require.NoError(t, svc.DeleteProperty(ctx, owner.ID, property.PublicID))

	_, err = svc.GetProperty(ctx, property.PublicID)
	assert.True(t, errors.Is(err, ErrPropertyNotFound))
}

func TestBrowsePropertiesOnlyApproved(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPropertyService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	approved := createApprovedProperty(t, db, owner.ID)

	_, err := svc.CreateProperty(ctx, owner.ID, &models.CreatePropertyRequest{
		Title:   "Unreviewed Flat",
		Type:    "apartment",
		Price:   decimal.NewFromInt(200000),
		City:    "Amsterdam",
		Country: "NL",
	})
	require.NoError(t, err)

	listed, err := svc.BrowseProperties(ctx, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, approved.PublicID, listed[0].PublicID)

	// City filter
	elsewhere, err := svc.BrowseProperties(ctx, "Utrecht", 20, 0)
	require.NoError(t, err)
	assert.Empty(t, elsewhere)
}

func TestFavoriteProperty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPropertyService(repository.NewRepository(db))
	ctx := context.Background()

	owner := createTestUser(t, db, "owner@example.com")
	user := createTestUser(t, db, "user@example.com")
	property := createApprovedProperty(t, db, owner.ID)

	require.NoError(t, svc.FavoriteProperty(ctx, user.ID, property.PublicID))
	// Saving twice is a no-op, not an error
	require.NoError(t, svc.FavoriteProperty(ctx, user.ID, property.PublicID))

	saved, err := svc.ListFavoriteProperties(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, property.PublicID, saved[0].PublicID)

	require.NoError(t, svc.UnfavoriteProperty(ctx, user.ID, property.PublicID))
	saved, err = svc.ListFavoriteProperties(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, saved)

	err = svc.FavoriteProperty(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

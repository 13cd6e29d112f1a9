package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/encontrar/shopping-api/internal/models"
)

func TestCreateSale(t *testing.T) {
	db := initTestDB(t)
	s := &SalesService{DB: db}

	sale, err := s.Create(context.Background(), SaleInput{Description: "two lamps", Amount: 60, UserID: 7})
	require.NoError(t, err)
	require.Equal(t, uint(1), sale.Quantity)
	require.Equal(t, uint(7), sale.UserID)
	require.False(t, sale.SaleDate.IsZero())

	_, err = s.Create(context.Background(), SaleInput{Amount: -1, UserID: 7})
	require.ErrorIs(t, err, ErrInvalid)
}

func TestCreateForUserIgnoresBodyUserID(t *testing.T) {
	db := initTestDB(t)
	s := &SalesService{DB: db}
	keeper := &models.User{ID: 3, Role: models.RoleSales}

	sale, err := s.CreateForUser(context.Background(), keeper, SaleInput{Amount: 10, UserID: 42})
	require.NoError(t, err)
	require.Equal(t, keeper.ID, sale.UserID)
}

func TestListSalesDateRange(t *testing.T) {
	db := initTestDB(t)
	s := &SalesService{DB: db}

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{jan, feb, mar} {
		day := d
		_, err := s.Create(context.Background(), SaleInput{Amount: 10, UserID: 1, SaleDate: &day})
		require.NoError(t, err)
	}

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	items, err := s.List(context.Background(), SaleFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, feb, items[0].SaleDate.UTC())
}

func TestForUserScopesToCaller(t *testing.T) {
	db := initTestDB(t)
	s := &SalesService{DB: db}

	_, err := s.Create(context.Background(), SaleInput{Amount: 10, UserID: 1})
	require.NoError(t, err)
	_, err = s.Create(context.Background(), SaleInput{Amount: 20, UserID: 2})
	require.NoError(t, err)

	items, err := s.ForUser(context.Background(), &models.User{ID: 2}, SaleFilter{UserID: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, uint(2), items[0].UserID)
}

func TestUpdateSale(t *testing.T) {
	db := initTestDB(t)
	s := &SalesService{DB: db}
	sale, err := s.Create(context.Background(), SaleInput{Amount: 10, UserID: 1})
	require.NoError(t, err)

	amount := 25.0
	updated, err := s.Update(context.Background(), sale.ID, SaleUpdate{Amount: &amount})
	require.NoError(t, err)
	require.Equal(t, 25.0, updated.Amount)

	bad := -5.0
	_, err = s.Update(context.Background(), sale.ID, SaleUpdate{Amount: &bad})
	require.ErrorIs(t, err, ErrInvalid)

	zero := uint(0)
	_, err = s.Update(context.Background(), sale.ID, SaleUpdate{Quantity: &zero})
	require.ErrorIs(t, err, ErrInvalid)

	_, err = s.Update(context.Background(), 9999, SaleUpdate{Amount: &amount})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteSale(t *testing.T) {
	db := initTestDB(t)
	s := &SalesService{DB: db}
	sale, err := s.Create(context.Background(), SaleInput{Amount: 10, UserID: 1})
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), sale.ID))
	require.ErrorIs(t, s.Delete(context.Background(), sale.ID), ErrNotFound)
}

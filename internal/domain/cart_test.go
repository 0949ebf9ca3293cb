package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/cartstore/internal/domain"
)

func makeCart() domain.Cart {
	return domain.Cart{
		{ID: 1, Title: "Shoe", Price: 139.9, Amount: 2},
		{ID: 2, Title: "Sneaker", Price: 99.5, Amount: 1},
	}
}

func TestCart_Find(t *testing.T) {
	cart := makeCart()

	require.Equal(t, 0, cart.Find(1))
	require.Equal(t, 1, cart.Find(2))
	require.Equal(t, -1, cart.Find(3))
	require.True(t, cart.Contains(2))
	require.False(t, cart.Contains(42))
}

func TestCart_WithKeepsOriginal(t *testing.T) {
	cart := makeCart()
	next := cart.With(domain.LineItem{ID: 3, Amount: 1})

	require.Len(t, cart, 2)
	require.Len(t, next, 3)
	require.Equal(t, int64(3), next[2].ID)
}

func TestCart_Without(t *testing.T) {
	cart := makeCart()
	next := cart.Without(1)

	require.Len(t, next, 1)
	require.Equal(t, int64(2), next[0].ID)
	require.Len(t, cart, 2)
}

func TestCart_WithAmountDoesNotAlias(t *testing.T) {
	cart := makeCart()
	next := cart.WithAmount(1, 5)

	require.Equal(t, 5, next[0].Amount)
	require.Equal(t, 2, cart[0].Amount)
	require.Equal(t, 6, next.Units())
}

func TestCart_Validate(t *testing.T) {
	require.Empty(t, makeCart().Validate())

	bad := domain.Cart{{ID: 1, Amount: 0}, {ID: 2, Amount: 1}, {ID: 2, Amount: 1}}
	errs := bad.Validate()
	require.Len(t, errs, 2)
	require.True(t, errors.Is(errs[0], domain.ErrLineItemAmountInvalid))
	require.True(t, errors.Is(errs[1], domain.ErrLineItemDuplicate))
}

func TestMarshalCart_RoundTrip(t *testing.T) {
	cart := makeCart()

	raw, err := domain.MarshalCart(cart)
	require.NoError(t, err)

	decoded, err := domain.UnmarshalCart(raw)
	require.NoError(t, err)
	require.Equal(t, cart, decoded)
}

func TestMarshalCart_EmptyIsArray(t *testing.T) {
	raw, err := domain.MarshalCart(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", raw)
}

func TestUnmarshalCart_Corrupt(t *testing.T) {
	_, err := domain.UnmarshalCart("{not json")
	require.ErrorIs(t, err, domain.ErrCorruptCart)

	_, err = domain.UnmarshalCart(`[{"id":1,"amount":0}]`)
	require.ErrorIs(t, err, domain.ErrCorruptCart)

	cart, err := domain.UnmarshalCart("null")
	require.NoError(t, err)
	require.NotNil(t, cart)
	require.Empty(t, cart)
}

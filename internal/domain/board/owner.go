package board

import (
	"strings"

	"github.com/orderboard/backend/internal/domain/shared"
)

// OwnerKind discriminates the two principal types that can own a board.
type OwnerKind string

const (
	OwnerKindUser OwnerKind = "user" // first-party account
	OwnerKindShop OwnerKind = "shop" // installed Shopify shop
)

// OwnerRef identifies a board owner. Every column and card belongs to
// exactly one owner, and all queries are scoped by it.
type OwnerRef struct {
	Kind OwnerKind
	ID   string
}

// NewUserOwner builds an owner reference for a first-party user.
func NewUserOwner(id string) (OwnerRef, error) {
	return newOwner(OwnerKindUser, id)
}

// NewShopOwner builds an owner reference for a shop, keyed by its
// normalized myshopify domain.
func NewShopOwner(domain string) (OwnerRef, error) {
	return newOwner(OwnerKindShop, strings.ToLower(strings.TrimSpace(domain)))
}

func newOwner(kind OwnerKind, id string) (OwnerRef, error) {
	if id == "" {
		return OwnerRef{}, shared.NewDomainError("INVALID_OWNER", "Owner identifier cannot be empty")
	}
	return OwnerRef{Kind: kind, ID: id}, nil
}

// IsZero reports whether the reference is unset.
func (o OwnerRef) IsZero() bool {
	return o.Kind == "" || o.ID == ""
}

// String renders the owner as kind:id, used in logs.
func (o OwnerRef) String() string {
	return string(o.Kind) + ":" + o.ID
}

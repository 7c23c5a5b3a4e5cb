package services

import (
	"context"

	"storefront/models"
	"storefront/utils"
)

type TokenIssuer interface {
	IssueAccessToken(sub utils.TokenSubject) (string, error)
}

// PaymentVerifier confirms a prepaid payment with its gateway before the order is marked Paid.
type PaymentVerifier interface {
	Verify(ctx context.Context, method models.PaymentMethod, details models.PaymentDetails) (bool, error)
}

// TrustingVerifier accepts any non-empty transaction id without contacting a gateway.
// Client-supplied proof is taken at face value; swap in a gateway-backed verifier
// before accepting real prepaid payments.
type TrustingVerifier struct{}

func (TrustingVerifier) Verify(_ context.Context, _ models.PaymentMethod, details models.PaymentDetails) (bool, error) {
	return details.TransactionID != "", nil
}

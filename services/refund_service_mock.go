package services

// MockRefundService is a test double for the refund collaborator
type MockRefundService struct {
	InitiateRefundFunc func(reference string, amount float64, paymentMethod string) (string, error)

	InitiatedRefunds []MockRefund
}

// MockRefund captures one recorded InitiateRefund call
type MockRefund struct {
	Reference     string
	Amount        float64
	PaymentMethod string
}

// InitiateRefund records the call and delegates to the hook if set
func (m *MockRefundService) InitiateRefund(reference string, amount float64, paymentMethod string) (string, error) {
	m.InitiatedRefunds = append(m.InitiatedRefunds, MockRefund{
		Reference:     reference,
		Amount:        amount,
		PaymentMethod: paymentMethod,
	})
	if m.InitiateRefundFunc != nil {
		return m.InitiateRefundFunc(reference, amount, paymentMethod)
	}
	return "RF-MOCK-" + reference, nil
}

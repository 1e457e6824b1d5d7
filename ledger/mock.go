package ledger

import "context"

// MockService is a test double for Service.
// All function fields must be set before the corresponding method is called.
type MockService struct {
	RegisterDocumentFn func(ctx context.Context, blobID, name, description string) (*TxHandle, error)
	GetDocumentFn      func(ctx context.Context, documentID string) (*DocumentRecord, error)
	SubmitQueryFn      func(ctx context.Context, documentID string, question []byte) (*TxHandle, error)
	SubmitAnswerFn     func(ctx context.Context, queryID, answer string, signature []byte) (*TxHandle, error)
	QueryEventsFn      func(ctx context.Context, kind string, limit int) ([]*Event, error)
}

func (m *MockService) RegisterDocument(ctx context.Context, blobID, name, description string) (*TxHandle, error) {
	return m.RegisterDocumentFn(ctx, blobID, name, description)
}
func (m *MockService) GetDocument(ctx context.Context, documentID string) (*DocumentRecord, error) {
	return m.GetDocumentFn(ctx, documentID)
}
func (m *MockService) SubmitQuery(ctx context.Context, documentID string, question []byte) (*TxHandle, error) {
	return m.SubmitQueryFn(ctx, documentID, question)
}
func (m *MockService) SubmitAnswer(ctx context.Context, queryID, answer string, signature []byte) (*TxHandle, error) {
	return m.SubmitAnswerFn(ctx, queryID, answer, signature)
}
func (m *MockService) QueryEvents(ctx context.Context, kind string, limit int) ([]*Event, error) {
	return m.QueryEventsFn(ctx, kind, limit)
}

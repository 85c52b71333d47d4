package gsheet

import (
	"context"
	"fmt"
)

type MockSheetsClient struct {
	WriteFunc func(ctx context.Context, range_ string, values [][]interface{}) (int64, error)

	WriteCalls []MockCall
}

type MockCall struct {
	Range_ string
	Values [][]interface{}
}

func (m *MockSheetsClient) Write(ctx context.Context, range_ string, values [][]interface{}) (int64, error) {
	m.WriteCalls = append(m.WriteCalls, MockCall{Range_: range_, Values: values})
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, range_, values)
	}
	return 0, fmt.Errorf("Write not implemented")
}

func (m *MockSheetsClient) Reset() {
	m.WriteCalls = nil
}

func (m *MockSheetsClient) factory() ClientFactory {
	return func(ctx context.Context, spreadsheetID string) (SheetsClient, error) {
		return m, nil
	}
}

type stubSource struct {
	data  []byte
	err   error
	calls int
}

func (s *stubSource) Fetch(ctx context.Context) ([]byte, error) {
	s.calls++
	return s.data, s.err
}

// Package mocks provides testify mocks for the chroma-go collection surface
// used by the docstore package. Only the methods exercised by tests are
// implemented; anything else panics through the embedded interface.
package mocks

import (
	"context"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/stretchr/testify/mock"
)

type MockCollection struct {
	mock.Mock
	chroma.Collection
}

func (m *MockCollection) Upsert(ctx context.Context, opts ...chroma.CollectionAddOption) error {
	args := make([]interface{}, 0, len(opts)+1)
	args = append(args, ctx)
	for _, o := range opts {
		args = append(args, o)
	}

	return m.Called(args...).Error(0)
}

func (m *MockCollection) Query(ctx context.Context, opts ...chroma.CollectionQueryOption) (chroma.QueryResult, error) {
	args := make([]interface{}, 0, len(opts)+1)
	args = append(args, ctx)
	for _, o := range opts {
		args = append(args, o)
	}

	ret := m.Called(args...)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}

	return ret.Get(0).(chroma.QueryResult), ret.Error(1)
}

func (m *MockCollection) Delete(ctx context.Context, opts ...chroma.CollectionDeleteOption) error {
	args := make([]interface{}, 0, len(opts)+1)
	args = append(args, ctx)
	for _, o := range opts {
		args = append(args, o)
	}

	return m.Called(args...).Error(0)
}

func (m *MockCollection) Get(ctx context.Context, opts ...chroma.CollectionGetOption) (chroma.GetResult, error) {
	args := make([]interface{}, 0, len(opts)+1)
	args = append(args, ctx)
	for _, o := range opts {
		args = append(args, o)
	}

	ret := m.Called(args...)
	if ret.Get(0) == nil {
		return nil, ret.Error(1)
	}

	return ret.Get(0).(chroma.GetResult), ret.Error(1)
}

type MockQueryResult struct {
	mock.Mock
	chroma.QueryResult
}

func (m *MockQueryResult) GetIDGroups() []chroma.DocumentIDs {
	return m.Called().Get(0).([]chroma.DocumentIDs)
}

func (m *MockQueryResult) GetDocumentsGroups() []chroma.Documents {
	return m.Called().Get(0).([]chroma.Documents)
}

func (m *MockQueryResult) GetMetadatasGroups() []chroma.DocumentMetadatas {
	return m.Called().Get(0).([]chroma.DocumentMetadatas)
}

func (m *MockQueryResult) GetDistancesGroups() []embeddings.Distances {
	return m.Called().Get(0).([]embeddings.Distances)
}

type MockGetResult struct {
	mock.Mock
	chroma.GetResult
}

func (m *MockGetResult) GetMetadatas() chroma.DocumentMetadatas {
	return m.Called().Get(0).(chroma.DocumentMetadatas)
}

type MockDocument struct {
	mock.Mock
	chroma.Document
}

func (m *MockDocument) ContentString() string {
	return m.Called().String(0)
}

type MockDocumentMetadata struct {
	mock.Mock
	chroma.DocumentMetadata
}

func (m *MockDocumentMetadata) GetString(key string) (string, bool) {
	ret := m.Called(key)
	return ret.String(0), ret.Bool(1)
}

func (m *MockDocumentMetadata) GetInt(key string) (int64, bool) {
	ret := m.Called(key)
	return ret.Get(0).(int64), ret.Bool(1)
}

package service_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"kbchat/internal/service"
	"kbchat/internal/storage"
	storagemocks "kbchat/internal/storage/mocks"
)

func TestDocumentService_SetEnabled(t *testing.T) {
	tests := []struct {
		name       string
		documentID string
		mockSetup  func(m *storagemocks.MockDocumentStore)
		wantErr    error
	}{
		{
			name:       "disable",
			documentID: "d1",
			mockSetup: func(m *storagemocks.MockDocumentStore) {
				m.EXPECT().SetEnabled(gomock.Any(), "d1", "alice", false).Return(nil)
				m.EXPECT().GetByID(gomock.Any(), "d1", "alice").Return(&storage.Document{ID: "d1", Enabled: false}, nil)
			},
		},
		{
			name:       "unknown document",
			documentID: "d9",
			mockSetup: func(m *storagemocks.MockDocumentStore) {
				m.EXPECT().SetEnabled(gomock.Any(), "d9", "alice", false).Return(storage.ErrNotFound)
			},
			wantErr: service.ErrNotFound,
		},
		{
			name:       "empty id",
			documentID: "",
			mockSetup:  func(m *storagemocks.MockDocumentStore) {},
			wantErr:    service.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			docs := storagemocks.NewMockDocumentStore(ctrl)
			tt.mockSetup(docs)

			doc, err := service.NewDocumentService(docs).SetEnabled(context.Background(), "alice", tt.documentID, false)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("SetEnabled() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetEnabled() error = %v", err)
			}
			if doc.Enabled {
				t.Error("SetEnabled() returned an enabled document")
			}
		})
	}
}

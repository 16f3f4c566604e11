package core

import (
	"errors"
	"testing"
	"time"
)

func TestValidateArticle(t *testing.T) {
	validTime := time.Now().Add(-1 * time.Hour)
	futureTime := time.Now().Add(1 * time.Hour)

	tests := []struct {
		name    string
		article *Article
		wantErr error
	}{
		{
			name: "valid article",
			article: &Article{
				Id:          1,
				Source:      "reuters",
				Title:       "Markets rally",
				Text:        "Stocks climbed on Tuesday.",
				PublishedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid with title only",
			article: &Article{
				Id:          2,
				Source:      "ap",
				Title:       "Headline only",
				PublishedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid with text only",
			article: &Article{
				Id:          3,
				Source:      "bbc",
				Text:        "Body without headline.",
				PublishedAt: validTime,
			},
			wantErr: nil,
		},
		{
			name: "valid with zero published time",
			article: &Article{
				Id:     4,
				Source: "feed",
				Text:   "No timestamp yet.",
			},
			wantErr: nil,
		},
		{
			name:    "nil article",
			article: nil,
			wantErr: ErrInvalidArticle,
		},
		{
			name: "empty title and text",
			article: &Article{
				Id:          5,
				Source:      "reuters",
				PublishedAt: validTime,
			},
			wantErr: ErrEmptyText,
		},
		{
			name: "empty source",
			article: &Article{
				Id:          6,
				Text:        "Some text",
				PublishedAt: validTime,
			},
			wantErr: ErrEmptySource,
		},
		{
			name: "future published time",
			article: &Article{
				Id:          7,
				Source:      "reuters",
				Text:        "Time traveller news",
				PublishedAt: futureTime,
			},
			wantErr: ErrInvalidTimestamp,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateArticle(tt.article)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateArticle() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateArticle() error = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidArticle) {
				t.Errorf("ValidateArticle() error %v should wrap ErrInvalidArticle", err)
			}
		})
	}
}

func TestIsValidTimestamp(t *testing.T) {
	if !IsValidTimestamp(time.Now().Add(-time.Minute)) {
		t.Error("IsValidTimestamp() rejected a past timestamp")
	}
	if IsValidTimestamp(time.Now().Add(24 * time.Hour)) {
		t.Error("IsValidTimestamp() accepted a future timestamp")
	}
}

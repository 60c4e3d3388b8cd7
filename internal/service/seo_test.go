package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"seller-insight/internal/imaging"
	"seller-insight/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func text(s string) models.LooseString { return models.NewLooseString(s) }

func boolPtr(b bool) *bool { return &b }

func TestContainsSymbolsOrEmoji(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{text: "Plain title 123", want: false},
		{text: "گوشی موبایل سامسونگ", want: false},
		{text: "under_score", want: false},
		{text: "Great product!", want: true},
		{text: "Price: 10$", want: true},
		{text: "Happy 😀", want: true},
		{text: "Check ✔", want: true},
		{text: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsSymbolsOrEmoji(tt.text))
		})
	}
}

func TestTitleChecks(t *testing.T) {
	assert.Nil(t, TitleEmojiCheck(models.LooseString{}))
	assert.True(t, *TitleEmojiCheck(text("Clean title")))
	assert.False(t, *TitleEmojiCheck(text("Sale!!!")))

	assert.False(t, IsTitleLengthValid(models.LooseString{}))
	assert.False(t, IsTitleLengthValid(text(strings.Repeat("a", 59))))
	assert.True(t, IsTitleLengthValid(text(strings.Repeat("a", 60))))
	// runes, not bytes
	assert.False(t, IsTitleLengthValid(text(strings.Repeat("ب", 40))))

	assert.False(t, HasLongDescription(text(strings.Repeat("x", 999))))
	assert.True(t, HasLongDescription(text(strings.Repeat("x", 1000))))
}

func TestScoreChecks(t *testing.T) {
	yes, no := true, false

	score, pct := ScoreChecks(nil)
	assert.Equal(t, 0, score)
	assert.Equal(t, 0.0, pct)

	score, pct = ScoreChecks([]*bool{nil, nil})
	assert.Equal(t, 0, score)
	assert.Equal(t, 0.0, pct)

	score, pct = ScoreChecks([]*bool{&yes, &no, nil, &yes, &no})
	assert.Equal(t, 2, score)
	assert.InDelta(t, 50.0, pct, 1e-9)
}

func TestEvaluate(t *testing.T) {
	var detail models.ProductDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "`+strings.Repeat("a", 60)+`",
		"productImage": "https://img/x.jpg?size=full",
		"images": [1, 2, 3, 4, 5, 6, 7],
		"videos": [1],
		"description": "`+strings.Repeat("d", 1000)+`",
		"attributes": {"color": ["red", "blue", "green"], "size": ["S", "M"]}
	}`), &detail))

	inspector := &fakeInspector{result: &imaging.Result{Width: 1200, Height: 1000, WhiteCorners: true}}
	info := NewSEOScorer(inspector).Evaluate(context.Background(), &detail)

	assert.True(t, *info.TitleEmoji)
	assert.True(t, info.TitleLengthValid)
	assert.True(t, info.WhiteBackground)
	assert.True(t, info.ImageSizeValid)
	assert.True(t, info.SevenOrMoreImages)
	assert.True(t, info.VideoContent)
	assert.True(t, info.LongDescription)
	assert.True(t, info.AtLeastFiveAttributes)
	assert.Equal(t, 8, info.Score)
	assert.InDelta(t, 100.0, info.ScorePercent, 1e-9)
	assert.Equal(t, "https://img/x.jpg", info.MainImageLink)
	assert.Equal(t, []string{"https://img/x.jpg?size=full"}, inspector.urls)
}

func TestEvaluateSparseListing(t *testing.T) {
	inspector := &fakeInspector{err: errors.New("decode failed")}
	info := NewSEOScorer(inspector).Evaluate(context.Background(), &models.ProductDetail{
		ProductImage: text("https://img/broken.jpg"),
	})

	assert.Nil(t, info.TitleEmoji)
	assert.False(t, info.WhiteBackground)
	assert.False(t, info.ImageSizeValid)
	assert.Equal(t, 0, info.Score)
	assert.Equal(t, 0.0, info.ScorePercent)
	assert.Equal(t, "Not available", info.ProductTitle)

	info = NewSEOScorer(inspector).Evaluate(context.Background(), &models.ProductDetail{Name: text("Short!")})
	assert.Equal(t, "Not available", info.MainImageLink)
	assert.Equal(t, "Short!", info.ProductTitle)
	assert.False(t, *info.TitleEmoji)
	assert.Len(t, inspector.urls, 1)
}

func TestEvaluateSmallImage(t *testing.T) {
	inspector := &fakeInspector{result: &imaging.Result{Width: 999, Height: 2000, WhiteCorners: true}}
	info := NewSEOScorer(inspector).Evaluate(context.Background(), &models.ProductDetail{
		ProductImage: text("https://img/small.jpg"),
	})
	assert.True(t, info.WhiteBackground)
	assert.False(t, info.ImageSizeValid)
}

func TestEvaluateOffTypeFields(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		titleEmoji *bool
		title      string
		imageLink  string
		inspected  int
	}{
		{
			name:       "numeric name",
			payload:    `{"name": 12345, "productImage": "https://img/a.jpg"}`,
			titleEmoji: boolPtr(false),
			title:      "Not available",
			imageLink:  "https://img/a.jpg",
			inspected:  1,
		},
		{
			name:       "object image",
			payload:    `{"name": "Mug", "productImage": {"url": "https://img/a.jpg"}}`,
			titleEmoji: boolPtr(true),
			title:      "Mug",
			imageLink:  "Not available",
		},
		{
			name:      "null name",
			payload:   `{"name": null, "description": 7}`,
			title:     "Not available",
			imageLink: "Not available",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var detail models.ProductDetail
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &detail))

			inspector := &fakeInspector{result: &imaging.Result{Width: 1200, Height: 1200, WhiteCorners: true}}
			info := NewSEOScorer(inspector).Evaluate(context.Background(), &detail)

			assert.Equal(t, tt.titleEmoji, info.TitleEmoji)
			assert.False(t, info.TitleLengthValid)
			assert.False(t, info.LongDescription)
			assert.Equal(t, tt.title, info.ProductTitle)
			assert.Equal(t, tt.imageLink, info.MainImageLink)
			assert.Len(t, inspector.urls, tt.inspected)
		})
	}
}

func TestProductDetailToleratesOffTypeObjects(t *testing.T) {
	var detail models.ProductDetail
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": ["a"],
		"commission": 5,
		"category": "phones",
		"product_dimension": {"width": 10}
	}`), &detail))

	info := detail.Info()
	assert.Nil(t, info.CanSell)
	assert.Nil(t, info.Category.Title)
	assert.Equal(t, json.Number("10"), info.ProductDimension.Width)

	out, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"name":["a"]`)
}

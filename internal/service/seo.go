package service

import (
	"context"
	"regexp"
	"unicode/utf8"

	"seller-insight/internal/imaging"
	"seller-insight/internal/models"
	"seller-insight/internal/util"

	"go.uber.org/zap"
)

const (
	minTitleLength       = 60
	minImageCount        = 7
	minDescriptionLength = 1000
	minAttributeValues   = 5
	minImageSide         = 1000

	notAvailable = "Not available"
)

var (
	// anything that is neither a word character nor whitespace
	symbolPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s\v\x{1C}-\x{1F}\x{85}\p{Z}]`)

	emojiPattern = regexp.MustCompile(`[` +
		`\x{1F600}-\x{1F64F}` + // emoticons
		`\x{1F300}-\x{1F5FF}` + // symbols & pictographs
		`\x{1F680}-\x{1F6FF}` + // transport & map
		`\x{1F1E0}-\x{1F1FF}` + // flags
		`\x{2702}-\x{27B0}` + // dingbats
		`\x{24C2}-\x{1F251}` +
		`]+`)
)

// ImageInspector downloads and decodes one image
type ImageInspector interface {
	Inspect(ctx context.Context, imageURL string) (*imaging.Result, error)
}

// SEOScorer evaluates the listing checks of a product
type SEOScorer struct {
	images ImageInspector
	logger *zap.Logger
}

// NewSEOScorer creates a scorer that reads the primary image through images.
func NewSEOScorer(images ImageInspector) *SEOScorer {
	return &SEOScorer{
		images: images,
		logger: util.GetLogger(),
	}
}

// Evaluate fills the checks and the score of a new SEOInfo. Analytics
// sub-records are left to the caller.
func (s *SEOScorer) Evaluate(ctx context.Context, detail *models.ProductDetail) *models.SEOInfo {
	ctx, span := util.StartSpan(ctx, "SEOScorer.Evaluate")
	defer span.End()

	info := &models.SEOInfo{
		TitleEmoji:            TitleEmojiCheck(detail.Name),
		TitleLengthValid:      IsTitleLengthValid(detail.Name),
		SevenOrMoreImages:     detail.ImageCount() >= minImageCount,
		VideoContent:          detail.VideoCount() > 0,
		LongDescription:       HasLongDescription(detail.Description),
		AtLeastFiveAttributes: detail.AttributeValueCount() >= minAttributeValues,
		MainImageLink:         notAvailable,
		ProductTitle:          notAvailable,
	}
	if detail.Name.Valid {
		info.ProductTitle = detail.Name.Value
	}

	if detail.ProductImage.Valid {
		info.MainImageLink = ExtractImageURL(detail.ProductImage.Value)
		if img := s.inspect(ctx, detail.ProductImage.Value); img != nil {
			info.WhiteBackground = img.WhiteCorners
			info.ImageSizeValid = img.Width >= minImageSide && img.Height >= minImageSide
		}
	}

	info.Score, info.ScorePercent = ScoreChecks(info.Checks())
	util.SEOScorePercent.Observe(info.ScorePercent)
	return info
}

// inspect returns nil when the image cannot be fetched or decoded; both
// image checks then fail.
func (s *SEOScorer) inspect(ctx context.Context, imageURL string) *imaging.Result {
	if s.images == nil || imageURL == "" {
		return nil
	}
	res, err := s.images.Inspect(ctx, imageURL)
	if err != nil {
		s.logger.Warn("Could not check product image",
			zap.String("url", imageURL),
			zap.Error(err))
		return nil
	}
	return res
}

// ScoreChecks counts the true checks among those evaluated (non-nil) and
// the percentage they make up. No evaluated checks scores 0.
func ScoreChecks(checks []*bool) (int, float64) {
	total, score := 0, 0
	for _, c := range checks {
		if c == nil {
			continue
		}
		total++
		if *c {
			score++
		}
	}
	if total == 0 {
		return 0, 0
	}
	return score, float64(score) / float64(total) * 100
}

// ContainsSymbolsOrEmoji reports whether text has punctuation, symbols or
// emoji.
func ContainsSymbolsOrEmoji(text string) bool {
	return symbolPattern.MatchString(text) || emojiPattern.MatchString(text)
}

// TitleEmojiCheck passes (true) when the title is free of symbols and
// emoji. It is nil when there is no title to check and false when the
// title is not text.
func TitleEmojiCheck(title models.LooseString) *bool {
	if !title.Present() {
		return nil
	}
	clean := title.Valid && !ContainsSymbolsOrEmoji(title.Value)
	return &clean
}

// IsTitleLengthValid requires at least 60 characters.
func IsTitleLengthValid(title models.LooseString) bool {
	return title.Valid && utf8.RuneCountInString(title.Value) >= minTitleLength
}

// HasLongDescription requires at least 1000 characters.
func HasLongDescription(description models.LooseString) bool {
	return description.Valid && utf8.RuneCountInString(description.Value) >= minDescriptionLength
}

package models

// SEOInfo is the scored SEO report of one listing. TitleEmoji is nil when
// the listing has no title; nil checks are left out of the score.
type SEOInfo struct {
	TitleEmoji            *bool              `json:"title_emoji"`
	TitleLengthValid      bool               `json:"title_length_valid"`
	WhiteBackground       bool               `json:"white_background"`
	ImageSizeValid        bool               `json:"image_size_valid"`
	SevenOrMoreImages     bool               `json:"seven_or_more_images"`
	VideoContent          bool               `json:"video_content"`
	LongDescription       bool               `json:"long_description"`
	AtLeastFiveAttributes bool               `json:"at_least_five_attributes"`
	MainImageLink         string             `json:"main_image_link"`
	ProductTitle          string             `json:"product_title"`
	CompetitorAnalysis    CompetitorAnalysis `json:"competitor_analysis"`
	TopKeywordAnalysis    KeywordAnalysis    `json:"top_keyword_analysis"`
	Score                 int                `json:"score"`
	ScorePercent          float64            `json:"score_percent"`
}

// Checks lists every boolean check, in report order.
func (s *SEOInfo) Checks() []*bool {
	return []*bool{
		s.TitleEmoji,
		&s.TitleLengthValid,
		&s.WhiteBackground,
		&s.ImageSizeValid,
		&s.SevenOrMoreImages,
		&s.VideoContent,
		&s.LongDescription,
		&s.AtLeastFiveAttributes,
	}
}

// CompetitorMetric compares one figure against the top five competitors
type CompetitorMetric struct {
	ProductID          string  `json:"product_id"`
	Value              float64 `json:"value"`
	Top5CompetitorsAvg float64 `json:"top_5_competitors_avg"`
}

// CompetitorAnalysis is keyed by metric name ("Sales", "Revenue", ...)
type CompetitorAnalysis map[string]CompetitorMetric

type KeywordAnalysis struct {
	TotalKeywords     int64 `json:"total-keywords"`
	Top10Keywords     int64 `json:"top-10-keywords"`
	TotalSearchVolume int64 `json:"total-search-volume"`
	Top10SearchVolume int64 `json:"top-10-search-volume"`
}

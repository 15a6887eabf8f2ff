package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/services"
	"clipper/internal/stage"
)

const systemPrompt = `You are a short-form video editor. You receive the timed transcript of a long-form video and select the moments most likely to perform as standalone vertical clips: strong hooks, emotional peaks, self-contained stories, surprising claims.

Respond with JSON only, in this shape:
{"clips": [{"start_time": "MM:SS", "end_time": "MM:SS", "title": "...", "transcript_text": "...", "reasoning": "...", "score": 0-100}]}

Rules: each clip runs 20 to 90 seconds, start_time and end_time must fall inside the video, clips must not overlap, and score reflects standalone watchability.`

// Analyzer selects highlight segments using a language model, or a
// deterministic offline picker when mock mode is enabled.
type Analyzer struct {
	client   *Client
	logger   *slog.Logger
	maxClips int
	mock     bool
}

// NewAnalyzer builds the highlight analyzer from configuration.
func NewAnalyzer(cfg *config.Config, logger *slog.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Analyzer{
		client: NewClient(Config{
			APIKey:         cfg.Analyzer.APIKey,
			BaseURL:        cfg.Analyzer.BaseURL,
			Model:          cfg.Analyzer.Model,
			TimeoutSeconds: cfg.Analyzer.TimeoutSeconds,
		}, opts...),
		logger:   logging.NewComponentLogger(logger, "analyzer"),
		maxClips: cfg.Analyzer.MaxClips,
		mock:     cfg.Analyzer.Mock,
	}
}

type highlightPayload struct {
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Title          string  `json:"title"`
	TranscriptText string  `json:"transcript_text"`
	Reasoning      string  `json:"reasoning"`
	Score          float64 `json:"score"`
}

type highlightEnvelope struct {
	Clips []highlightPayload `json:"clips"`
}

// Analyze runs highlight selection over the transcript. It returns the
// parsed segments in model order, dropping entries whose timecodes are
// malformed or fall outside the media duration.
func (a *Analyzer) Analyze(ctx context.Context, media stage.Media, transcript stage.Transcript) ([]stage.Highlight, error) {
	text := strings.TrimSpace(transcript.Text)
	if text == "" {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "read transcript", "Transcript is empty; nothing to analyze", nil)
	}

	if a.mock {
		return a.mockHighlights(text, media.DurationSeconds), nil
	}

	userPrompt := fmt.Sprintf("Video duration: %s.\n\nTranscript:\n%s", stage.FormatTimecode(media.DurationSeconds), text)
	content, err := a.client.CompleteJSON(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "model request", "Highlight analysis failed", err)
	}

	var envelope highlightEnvelope
	if err := DecodeModelJSON(content, &envelope); err != nil {
		// Some models return the bare array without the wrapper object.
		var bare []highlightPayload
		if bareErr := DecodeModelJSON(content, &bare); bareErr != nil {
			return nil, services.Wrap(services.ErrAnalysis, "analyze", "parse payload", "Analyzer returned unparseable highlights", err)
		}
		envelope.Clips = bare
	}

	highlights := make([]stage.Highlight, 0, len(envelope.Clips))
	for _, clip := range envelope.Clips {
		highlight, ok := a.toHighlight(clip, media.DurationSeconds)
		if !ok {
			a.logger.Warn("dropping malformed highlight",
				logging.String("start", clip.StartTime),
				logging.String("end", clip.EndTime),
				logging.String("title", clip.Title))
			continue
		}
		highlights = append(highlights, highlight)
		if a.maxClips > 0 && len(highlights) >= a.maxClips {
			break
		}
	}
	if len(highlights) == 0 {
		return nil, services.Wrap(services.ErrAnalysis, "analyze", "select highlights", "Analyzer found no usable highlights", nil)
	}
	return highlights, nil
}

func (a *Analyzer) toHighlight(clip highlightPayload, duration float64) (stage.Highlight, bool) {
	start, err := stage.ParseTimecode(clip.StartTime)
	if err != nil {
		return stage.Highlight{}, false
	}
	end, err := stage.ParseTimecode(clip.EndTime)
	if err != nil {
		return stage.Highlight{}, false
	}
	if duration > 0 {
		if start >= duration {
			return stage.Highlight{}, false
		}
		if end > duration {
			end = duration
		}
	}
	if end <= start {
		return stage.Highlight{}, false
	}

	score := int(clip.Score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	title := strings.TrimSpace(clip.Title)
	if title == "" {
		title = fmt.Sprintf("Highlight at %s", stage.FormatTimecode(start))
	}
	return stage.Highlight{
		StartSeconds: start,
		EndSeconds:   end,
		Title:        title,
		Excerpt:      strings.TrimSpace(clip.TranscriptText),
		Score:        score,
	}, true
}

// mockHighlights derives up to three evenly spaced segments from the
// transcript so the pipeline can run end to end without an API key.
func (a *Analyzer) mockHighlights(text string, duration float64) []stage.Highlight {
	lines := make([]string, 0, 64)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, strings.TrimSpace(line))
		}
	}
	count := 3
	if len(lines) < count {
		count = len(lines)
	}
	if count == 0 {
		count = 1
		lines = []string{""}
	}

	segment := duration
	if segment <= 0 {
		segment = 90
	}
	highlights := make([]stage.Highlight, 0, count)
	for i := 0; i < count; i++ {
		start := segment * float64(i) / float64(count)
		end := start + 30
		if duration > 0 && end > duration {
			end = duration
		}
		if end <= start {
			end = start + 1
		}
		highlights = append(highlights, stage.Highlight{
			StartSeconds: start,
			EndSeconds:   end,
			Title:        fmt.Sprintf("Mock Highlight %d", i+1),
			Excerpt:      lines[i%len(lines)],
			Score:        90 - i*10,
		})
	}
	return highlights
}

// HealthCheck reports analyzer readiness for the status surface.
func (a *Analyzer) HealthCheck(ctx context.Context) stage.Health {
	const name = "analyzer"
	if a.mock {
		return stage.Healthy(name)
	}
	if a.client.cfg.APIKey == "" {
		return stage.Unhealthy(name, "API key missing")
	}
	if err := a.client.HealthCheck(ctx); err != nil {
		return stage.Unhealthy(name, services.UserMessage(err))
	}
	return stage.Healthy(name)
}

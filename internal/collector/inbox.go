// Package collector picks up fetched transcripts from an inbox directory and
// hands them to the scoring pipeline.
package collector

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
	"github.com/spacesedan/earningsflow/internal/transcript"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"

	sidecarSuffix = ".meta.json"
)

// Names like "MRNA_2025_Q2.md" or "mrna-2025-q2.txt" carry their own metadata.
var fileNamePattern = regexp.MustCompile(`(?i)^([A-Z][A-Z0-9.]*)[_-](\d{4})[_-]Q([1-4])`)

// LoadInbox reads every transcript in dir. Text and markdown files take their
// metadata from a "<file>.meta.json" sidecar or, failing that, from the file
// name. JSON files hold a complete RawTranscript. Files whose metadata cannot
// be resolved are skipped with a warning.
func LoadInbox(dir string, now time.Time) ([]models.RawTranscript, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("[Collector] read inbox %s: %w", dir, err)
	}

	var transcripts []models.RawTranscript
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, sidecarSuffix) {
			continue
		}

		rt, ok, err := loadFile(filepath.Join(dir, name), now)
		if err != nil {
			slog.Warn("[Collector] Skipping unreadable transcript",
				slog.String("file", name),
				slog.String("error", err.Error()))
			continue
		}
		if ok {
			transcripts = append(transcripts, rt)
		}
	}

	slices.SortFunc(transcripts, func(a, b models.RawTranscript) int {
		return strings.Compare(a.ContentID, b.ContentID)
	})
	return transcripts, nil
}

func loadFile(path string, now time.Time) (models.RawTranscript, bool, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))

	var format string
	switch ext {
	case ".txt":
		format = FormatText
	case ".md", ".markdown":
		format = FormatMarkdown
	case ".json":
		return loadJSON(path, now)
	default:
		return models.RawTranscript{}, false, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawTranscript{}, false, err
	}

	meta, found, err := readSidecar(path)
	if err != nil {
		return models.RawTranscript{}, false, err
	}
	if !found {
		meta, found = metadataFromName(name)
	}
	if !found {
		slog.Warn("[Collector] No metadata for transcript, skipping", slog.String("file", name))
		return models.RawTranscript{}, false, nil
	}

	text := string(data)
	if format == FormatMarkdown {
		text = transcript.MarkdownToText(text)
	}

	return models.RawTranscript{
		ContentID: strings.TrimSuffix(name, filepath.Ext(name)),
		Text:      text,
		Format:    format,
		Metadata:  meta.WithDefaults(now),
	}, true, nil
}

func loadJSON(path string, now time.Time) (models.RawTranscript, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.RawTranscript{}, false, err
	}

	var rt models.RawTranscript
	if err := json.Unmarshal(data, &rt); err != nil {
		return models.RawTranscript{}, false, fmt.Errorf("[Collector] parse %s: %w", filepath.Base(path), err)
	}
	if rt.Metadata.Ticker == "" {
		slog.Warn("[Collector] JSON transcript has no ticker, skipping", slog.String("file", filepath.Base(path)))
		return models.RawTranscript{}, false, nil
	}

	if rt.ContentID == "" {
		rt.ContentID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	if rt.Format == FormatMarkdown {
		rt.Text = transcript.MarkdownToText(rt.Text)
	}
	rt.Format = FormatText
	rt.Metadata = rt.Metadata.WithDefaults(now)
	return rt, true, nil
}

func readSidecar(path string) (models.TranscriptMetadata, bool, error) {
	var meta models.TranscriptMetadata

	data, err := os.ReadFile(strings.TrimSuffix(path, filepath.Ext(path)) + sidecarSuffix)
	if os.IsNotExist(err) {
		return meta, false, nil
	}
	if err != nil {
		return meta, false, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, false, fmt.Errorf("[Collector] parse sidecar for %s: %w", filepath.Base(path), err)
	}
	return meta, meta.Ticker != "", nil
}

func metadataFromName(name string) (models.TranscriptMetadata, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return models.TranscriptMetadata{}, false
	}
	year, _ := strconv.Atoi(m[2])
	quarter, _ := strconv.Atoi(m[3])
	return models.TranscriptMetadata{
		Ticker:        strings.ToUpper(m[1]),
		FiscalYear:    year,
		FiscalQuarter: quarter,
		Source:        "inbox",
	}, true
}

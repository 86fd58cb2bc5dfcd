package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/earningsflow/internal/models"
)

// HugotClassifier runs a FinBERT-style sequence classifier locally through
// an ONNX Runtime session. Softmax is applied over every label so the full
// probability triple comes back for each chunk.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
}

func NewHugotClassifier(modelName, modelDir string) (*HugotClassifier, error) {
	modelPath, err := ensureModel(modelName, modelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize session: %w", err)
	}

	config := hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "finbertSentimentPipeline",
		Options: []hugot.TextClassificationOption{
			pipelines.WithSoftmax(),
			pipelines.WithMultiLabel(),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			slog.Warn("[HugotClassifier] Failed to destroy session", slog.String("error", destroyErr.Error()))
		}
		return nil, fmt.Errorf("[HugotClassifier] failed to initialize pipeline: %w", err)
	}

	slog.Info("[HugotClassifier] Classifier ready", slog.String("model", modelPath))
	return &HugotClassifier{session: session, pipeline: pipeline}, nil
}

func ensureModel(modelName, modelDir string) (string, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("[HugotClassifier] failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		slog.Info("[HugotClassifier] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	}

	slog.Info("[HugotClassifier] Model not found, downloading...", slog.String("model", modelName))
	downloaded, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("[HugotClassifier] failed to download model: %w", err)
	}
	return downloaded, nil
}

func (h *HugotClassifier) Classify(ctx context.Context, chunk string) (models.ClassifierOutput, error) {
	if err := ctx.Err(); err != nil {
		return models.ClassifierOutput{}, err
	}

	output, err := h.pipeline.RunPipeline([]string{chunk})
	if err != nil {
		return models.ClassifierOutput{}, fmt.Errorf("[HugotClassifier] inference failed: %w", err)
	}
	if len(output.ClassificationOutputs) == 0 || len(output.ClassificationOutputs[0]) == 0 {
		return models.ClassifierOutput{}, errors.New("[HugotClassifier] empty classification output")
	}

	scores := make(map[string]float64, len(output.ClassificationOutputs[0]))
	for _, c := range output.ClassificationOutputs[0] {
		scores[c.Label] = float64(c.Score)
	}
	return OutputFromProbabilities(ProbabilitiesFromScores(scores)), nil
}

func (h *HugotClassifier) Close() error {
	return h.session.Destroy()
}

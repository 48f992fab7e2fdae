package ocr

import (
	"context"
	"fmt"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"

	"github.com/yomitoru/yomitoru/internal/pipeline"
)

// VisionClient adapts the Google Cloud Vision text-detection API to the
// pipeline's TextDetector interface.
type VisionClient struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionClient creates a Vision client authenticated with the given
// service-account JSON.
func NewVisionClient(ctx context.Context, credentialsJSON []byte) (*VisionClient, error) {
	client, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON(credentialsJSON))
	if err != nil {
		return nil, fmt.Errorf("creating vision client: %w", err)
	}
	return &VisionClient{client: client}, nil
}

// DetectText runs text detection on raw image bytes. The returned slice
// follows the Vision API convention: the first annotation carries the
// full-image transcription, the rest are individual fragments.
func (c *VisionClient) DetectText(ctx context.Context, image []byte) ([]pipeline.Detection, error) {
	annotations, err := c.client.DetectTexts(ctx, &visionpb.Image{Content: image}, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("text detection: %w", err)
	}
	return convertAnnotations(annotations), nil
}

// Close releases the underlying connection.
func (c *VisionClient) Close() error {
	return c.client.Close()
}

func convertAnnotations(annotations []*visionpb.EntityAnnotation) []pipeline.Detection {
	detections := make([]pipeline.Detection, 0, len(annotations))
	for _, ann := range annotations {
		detections = append(detections, pipeline.Detection{
			Text:     ann.GetDescription(),
			Vertices: convertVertices(ann.GetBoundingPoly().GetVertices()),
		})
	}
	return detections
}

func convertVertices(vertices []*visionpb.Vertex) []pipeline.Vertex {
	if len(vertices) == 0 {
		return nil
	}
	converted := make([]pipeline.Vertex, 0, len(vertices))
	for _, v := range vertices {
		// Vertex coordinates omitted by the API default to zero.
		converted = append(converted, pipeline.Vertex{X: int(v.GetX()), Y: int(v.GetY())})
	}
	return converted
}

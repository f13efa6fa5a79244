package services

import (
	"context"
	"strings"

	"firstbites/models"
	"firstbites/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

type rekognitionAPI interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// RecognitionService guesses which catalog foods appear in a photo.
type RecognitionService struct {
	client rekognitionAPI
}

func NewRecognitionService(ctx context.Context, region string) (*RecognitionService, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &RecognitionService{client: rekognition.NewFromConfig(cfg)}, nil
}

// RecognizeLabels returns the top labels for a base64 data-URI image.
func (r *RecognitionService) RecognizeLabels(ctx context.Context, dataURI string) ([]string, error) {
	contentType, data, err := utils.DecodeDataURI(dataURI)
	if err != nil || !strings.HasPrefix(contentType, "image/") {
		return nil, &ValidationError{Field: "image_base64", Reason: "must be a base64 image data URI"}
	}

	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return nil, err
	}

	labels := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, aws.ToString(l.Name))
	}
	return labels, nil
}

// MatchFoods returns catalog foods whose name contains, or is contained in,
// one of the labels. Catalog order is kept.
func MatchFoods(labels []string, foods []models.Food) []models.Food {
	var out []models.Food
	for _, f := range foods {
		name := strings.ToLower(f.Name)
		for _, l := range labels {
			l = strings.ToLower(strings.TrimSpace(l))
			if l == "" {
				continue
			}
			if strings.Contains(name, l) || strings.Contains(l, name) {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

func (r *RecognitionService) Recognize(ctx context.Context, dataURI string, foods []models.Food) ([]models.Food, error) {
	labels, err := r.RecognizeLabels(ctx, dataURI)
	if err != nil {
		return nil, err
	}
	return MatchFoods(labels, foods), nil
}

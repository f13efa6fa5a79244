package services

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRekognition struct {
	labels []string
	got    *rekognition.DetectLabelsInput
}

func (f *fakeRekognition) DetectLabels(_ context.Context, in *rekognition.DetectLabelsInput, _ ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error) {
	f.got = in
	out := &rekognition.DetectLabelsOutput{}
	for _, l := range f.labels {
		out.Labels = append(out.Labels, types.Label{Name: aws.String(l)})
	}
	return out, nil
}

func TestMatchFoods(t *testing.T) {
	got := MatchFoods([]string{"Food", "banana", " Sweet Potato ", "Egg", ""}, testCatalog())
	var names []string
	for _, f := range got {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Scrambled Egg", "Banana", "Sweet Potato"}, names)
}

func TestRecognitionService_Recognize(t *testing.T) {
	fake := &fakeRekognition{labels: []string{"Fruit", "Banana", "Plant"}}
	rs := &RecognitionService{client: fake}

	foods, err := rs.Recognize(context.Background(), "data:image/png;base64,iVBORw0KGgo=", testCatalog())
	require.NoError(t, err)
	require.Len(t, foods, 1)
	assert.Equal(t, "Banana", foods[0].Name)
	assert.NotEmpty(t, fake.got.Image.Bytes)

	_, err = rs.Recognize(context.Background(), "not-a-data-uri", testCatalog())
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = rs.Recognize(context.Background(), "data:text/plain;base64,aGk=", testCatalog())
	require.ErrorAs(t, err, &ve)
}

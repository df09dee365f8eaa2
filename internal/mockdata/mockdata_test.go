package mockdata

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SAMUEL-ST-16/ExtractReq/internal/models"
)

func TestCatalogHasSixSubcharacteristics(t *testing.T) {
	catalog := Catalog()
	require.Len(t, catalog, 6)

	ids := make(map[models.Subcharacteristic]bool)
	for _, info := range catalog {
		require.NotEmpty(t, info.Name)
		require.NotEmpty(t, info.Description)
		ids[info.ID] = true
	}
	require.Len(t, ids, 6)
}

func TestDescribe(t *testing.T) {
	require.NotEmpty(t, Describe(models.SubIntegrity))
	require.Empty(t, Describe(models.Subcharacteristic("bogus")))
}

func TestResultFor_Channels(t *testing.T) {
	for _, ch := range models.Channels {
		result := ResultFor(ch)
		require.NotNil(t, result, ch)
		require.Equal(t, models.SourceKind(ch), result.SourceType)
		require.LessOrEqual(t, result.ValidRequirements, result.TotalComments)
		require.Len(t, result.Requirements, result.TotalComments)
	}
	require.Nil(t, ResultFor(models.Channel("bogus")))
}

func TestResultFor_ReturnsIndependentCopies(t *testing.T) {
	first := ResultFor(models.ChannelCSV)
	first.Requirements[0].Text = "mutated"
	first.TotalComments = 99
	*first.Requirements[0].MulticlassScore = 0.0

	second := ResultFor(models.ChannelCSV)
	require.NotEqual(t, "mutated", second.Requirements[0].Text)
	require.NotEqual(t, 99, second.TotalComments)
	require.NotZero(t, *second.Requirements[0].MulticlassScore)
}

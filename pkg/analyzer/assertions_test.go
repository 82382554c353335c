package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/script"
)

func classified(t *testing.T, text string) []*Page {
	t.Helper()
	pages, _ := DetectPages(script.Extract(text), config.Default())
	ClassifyAssertions(pages)
	return pages
}

// TestClassifyAssertions_Types tests matcher-name mapping, including
// negation and the custom fallback.
func TestClassifyAssertions_Types(t *testing.T) {
	input := `await page.goto('https://example.com/app');
await expect(page.locator('.msg')).toContainText('Saved');
await expect(page.locator('.spinner')).not.toBeVisible();
await expect(page).toHaveURL('https://example.com/app');
await expect(page.locator('#count')).toHaveCount(3);`

	pages := classified(t, input)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Assertions, 4)

	types := make([]string, 4)
	for i, as := range pages[0].Assertions {
		types[i] = as.Type
	}
	assert.Equal(t, []string{"toContainText", "toBeVisible", "toHaveURL", "custom"}, types)
}

// TestClassifyAssertions_Placement tests the placement precedence.
func TestClassifyAssertions_Placement(t *testing.T) {
	t.Run("after causing interaction goes in the page object", func(t *testing.T) {
		input := `await page.goto('https://example.com/files');
await page.click('#open-details');
await expect(page.locator('.details-panel')).toBeVisible();`

		pages := classified(t, input)
		require.Len(t, pages[0].Assertions, 1)
		assert.Equal(t, PlaceInPageObject, pages[0].Assertions[0].Placement)
	})

	t.Run("recurring shape earns its own method", func(t *testing.T) {
		input := `await page.goto('https://example.com/a');
await expect(page.locator('.banner')).toContainText('Hello');
await page.goto('https://example.com/b');
await expect(page.locator('.banner')).toContainText('Hello');`

		pages := classified(t, input)
		require.Len(t, pages, 2)
		assert.Equal(t, PlaceSeparateMethod, pages[0].Assertions[0].Placement)
		assert.Equal(t, PlaceSeparateMethod, pages[1].Assertions[0].Placement)
	})

	t.Run("lone content assertion stays in the test", func(t *testing.T) {
		input := `await page.goto('https://example.com/about');
await expect(page.locator('h1')).toContainText('About us');`

		pages := classified(t, input)
		require.Len(t, pages[0].Assertions, 1)
		assert.Equal(t, PlaceInTest, pages[0].Assertions[0].Placement)
	})
}

// TestClassifyAssertions_ExpectedValue tests that the expected literal
// survives into the assertion record.
func TestClassifyAssertions_ExpectedValue(t *testing.T) {
	input := `await page.goto('https://example.com/app');
await expect(page.locator('.msg')).toContainText('Saved');`

	pages := classified(t, input)
	require.Len(t, pages[0].Assertions, 1)
	assert.Equal(t, "Saved", pages[0].Assertions[0].Expected)
}

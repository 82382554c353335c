package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/script"
)

const loginScript = `test('login', async ({ page }) => {
  await page.goto('https://example.com/login');
  await page.fill('#email', 'user@example.com');
  await page.fill('#password', 'hunter2');
  await page.click('.submit-button');
  await page.waitForURL('**/dashboard');
  await expect(page.locator('.welcome')).toContainText('Welcome');
});`

func detect(t *testing.T, text string) ([]*Page, []Warning) {
	t.Helper()
	stmts := script.Extract(text)
	require.True(t, script.HasSemantic(stmts))
	return DetectPages(stmts, config.Default())
}

// TestDetectPages_LoginFlow tests the canonical two-page split: goto opens
// the first page, waitForURL to an unrelated path opens the second at full
// confidence.
func TestDetectPages_LoginFlow(t *testing.T) {
	pages, warnings := detect(t, loginScript)
	require.Len(t, pages, 2)
	assert.Empty(t, warnings)

	login := pages[0]
	assert.Equal(t, "LoginPage", login.InferredName)
	assert.Equal(t, 100, login.Confidence)
	assert.Equal(t, "https://example.com/login", login.URLPattern)
	assert.Equal(t, "goto https://example.com/login", login.EntryEvent)
	assert.Equal(t, "waitForURL **/dashboard", login.ExitEvent)
	require.Len(t, login.Actions, 4)
	assert.True(t, login.Actions[0].IsEntry)
	assert.Empty(t, login.Assertions)

	dashboard := pages[1]
	assert.Equal(t, "DashboardPage", dashboard.InferredName)
	assert.Equal(t, 100, dashboard.Confidence, "no shared path segments means a certain boundary")
	assert.Equal(t, "end of script", dashboard.ExitEvent)
	require.Len(t, dashboard.Actions, 1)
	assert.True(t, dashboard.Actions[0].IsEntry)
	require.Len(t, dashboard.Assertions, 1)
	assert.Equal(t, "Welcome", dashboard.Assertions[0].Expected)
}

// TestDetectPages_MultipleGotos tests that every goto opens a page of its
// own at full confidence.
func TestDetectPages_MultipleGotos(t *testing.T) {
	input := `await page.goto('https://shop.example.com/products');
await page.click('.product-card');
await page.goto('https://shop.example.com/cart');
await page.click('#checkout');
await page.goto('https://shop.example.com/checkout');
await page.fill('#card', '4111111111111111');`

	pages, warnings := detect(t, input)
	require.Len(t, pages, 3)
	assert.Empty(t, warnings)

	names := []string{pages[0].InferredName, pages[1].InferredName, pages[2].InferredName}
	assert.Equal(t, []string{"ProductsPage", "CartPage", "CheckoutPage"}, names)
	for _, p := range pages {
		assert.Equal(t, 100, p.Confidence)
	}
}

// TestDetectPages_NoNavigation tests the degenerate single-page case.
func TestDetectPages_NoNavigation(t *testing.T) {
	input := `await page.click('#open');
await page.fill('#field', 'value');
await expect(page.locator('#result')).toBeVisible();`

	pages, warnings := detect(t, input)
	require.Len(t, pages, 1)

	p := pages[0]
	assert.Equal(t, 60, p.Confidence)
	assert.Equal(t, "start of script", p.EntryEvent)
	assert.Equal(t, "end of script", p.ExitEvent)
	assert.Equal(t, "MainPage", p.InferredName)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "no navigation signals")
}

// TestDetectPages_WaitForURLSamePage tests that waiting for a sub-path of
// the current URL does not split the page under the path threshold.
func TestDetectPages_WaitForURLSamePage(t *testing.T) {
	input := `await page.goto('https://example.com/settings');
await page.click('#save');
await page.waitForURL('**/settings/saved');`

	pages, _ := detect(t, input)
	assert.Len(t, pages, 1)
}

// TestDetectPages_StructuralPrefix tests that leading structural lines
// fold into the first real page instead of producing an empty one.
func TestDetectPages_StructuralPrefix(t *testing.T) {
	pages, _ := detect(t, loginScript)
	require.NotEmpty(t, pages)
	assert.Equal(t, "goto https://example.com/login", pages[0].EntryEvent)
}

// TestDetectPages_ModalAsPage tests the modal_detection=page option.
func TestDetectPages_ModalAsPage(t *testing.T) {
	input := `await page.goto('https://example.com/files');
await page.click('#delete');
await page.click('.modal-confirm');`

	cfg := config.Default()
	cfg.PageDetection.ModalDetection = config.ModalAsPage

	stmts := script.Extract(input)
	pages, warnings := DetectPages(stmts, cfg)
	require.Len(t, pages, 2)

	assert.Equal(t, "ModalPage", pages[1].InferredName)
	assert.Equal(t, 60, pages[1].Confidence)

	// A sub-threshold boundary is always flagged.
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0].Message, "ambiguous page boundary")
}

// TestDetectPages_WaitBehavior tests wait tracking on the following action.
func TestDetectPages_WaitBehavior(t *testing.T) {
	input := `await page.goto('https://example.com/list');
await page.waitForTimeout(3000);
await page.click('#row');`

	pages, _ := detect(t, input)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Actions, 3)

	click := pages[0].Actions[2]
	assert.Equal(t, "click", click.Stmt.ActionVerb)
	assert.True(t, click.Wait.PrecededByWait)
	assert.True(t, click.Wait.TimeoutAntiPattern)
}

// TestExtractParams tests parameter inference from fill-style actions.
func TestExtractParams(t *testing.T) {
	input := `await page.goto('https://example.com/login');
await page.fill('#email', 'user@example.com');
await page.keyboard.press('Enter');`

	pages, _ := detect(t, input)
	require.Len(t, pages, 1)
	require.Len(t, pages[0].Actions, 3)

	fill := pages[0].Actions[1]
	require.Len(t, fill.Params, 1)
	assert.Equal(t, "email", fill.Params[0].Name)
	assert.Equal(t, "user@example.com", fill.Params[0].ExampleValue)
	assert.True(t, fill.Params[0].ShouldBeParameter)

	press := pages[0].Actions[2]
	require.Len(t, press.Params, 1)
	assert.Equal(t, "Enter", press.Params[0].ExampleValue)
	assert.False(t, press.Params[0].ShouldBeParameter, "key names are constants, not parameters")
}

// TestDetectPages_NameDedupe tests numeric disambiguation of repeated
// inferred names.
func TestDetectPages_NameDedupe(t *testing.T) {
	input := `await page.goto('https://example.com/search');
await page.fill('#q', 'first');
await page.goto('https://example.com/search');
await page.fill('#q', 'second');`

	pages, _ := detect(t, input)
	require.Len(t, pages, 2)
	assert.Equal(t, "SearchPage", pages[0].InferredName)
	assert.Equal(t, "SearchPage2", pages[1].InferredName)
}

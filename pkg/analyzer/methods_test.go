package analyzer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asub927/pagelift/pkg/config"
	"github.com/asub927/pagelift/pkg/script"
)

func groupFirstPage(t *testing.T, text string, cfg *config.Config) (*Page, []Method) {
	t.Helper()
	pages, _ := DetectPages(script.Extract(text), cfg)
	require.NotEmpty(t, pages)
	genericSeq := 0
	p := pages[0]
	return p, GroupMethods(p, cfg, p.URLPattern, &genericSeq)
}

// TestGroupMethods_FillRunWithSubmit tests the canonical login grouping:
// a fill run plus its terminal submit click is one method.
func TestGroupMethods_FillRunWithSubmit(t *testing.T) {
	input := `await page.goto('https://example.com/login');
await page.fill('#email', 'user@example.com');
await page.fill('#password', 'hunter2');
await page.click('.submit-button');`

	_, methods := groupFirstPage(t, input, config.Default())
	require.Len(t, methods, 1)

	m := methods[0]
	assert.Equal(t, []int{1, 2, 3}, m.ActionIdx, "entry goto is not grouped")
	assert.Equal(t, "submitLogin", m.Name)
	assert.Equal(t, 70, m.Confidence, "named from the URL noun")
	assert.False(t, m.GenericName)

	require.Len(t, m.Parameters, 2)
	assert.Equal(t, "email", m.Parameters[0].Name)
	assert.Equal(t, "password", m.Parameters[1].Name)

	// 3 actions and 2 parameters, nothing else.
	assert.Equal(t, 35, m.Complexity)
}

// TestGroupMethods_ContentName tests the highest-precedence naming source:
// explicit content on the terminal action.
func TestGroupMethods_ContentName(t *testing.T) {
	input := `await page.goto('https://example.com/login');
await page.fill('#email', 'user@example.com');
await page.fill('#password', 'hunter2');
await page.getByRole('button', { name: 'Sign in' }).click();`

	_, methods := groupFirstPage(t, input, config.Default())
	require.Len(t, methods, 1)

	m := methods[0]
	assert.Equal(t, "submitSignIn", m.Name)
	assert.Equal(t, 85, m.Confidence)
	assert.Contains(t, m.Alternatives, "signIn")
}

// TestGroupMethods_MaxActionsCap tests the hard window cap.
func TestGroupMethods_MaxActionsCap(t *testing.T) {
	input := "await page.goto('https://example.com/survey');\n"
	for i := 1; i <= 9; i++ {
		input += fmt.Sprintf("await page.fill('#field%d', 'v%d');\n", i, i)
	}

	_, methods := groupFirstPage(t, input, config.Default())
	require.Len(t, methods, 2)
	assert.Len(t, methods[0].ActionIdx, 8)
	assert.Len(t, methods[1].ActionIdx, 1)
}

// TestGroupMethods_SeparateAssertions tests that an assertion closes the
// open group under the default configuration.
func TestGroupMethods_SeparateAssertions(t *testing.T) {
	input := `await page.goto('https://example.com/form');
await page.fill('#name', 'Alice');
await expect(page.locator('#name')).toHaveValue('Alice');
await page.fill('#city', 'Berlin');`

	_, methods := groupFirstPage(t, input, config.Default())
	require.Len(t, methods, 2)
	assert.Len(t, methods[0].ActionIdx, 1)
	assert.Len(t, methods[1].ActionIdx, 1)
	assert.Empty(t, methods[0].AssertionIdx)
}

// TestGroupMethods_AssertionsJoinWhenAllowed tests the opposite setting.
func TestGroupMethods_AssertionsJoinWhenAllowed(t *testing.T) {
	input := `await page.goto('https://example.com/form');
await page.fill('#name', 'Alice');
await expect(page.locator('#name')).toHaveValue('Alice');
await page.fill('#city', 'Berlin');`

	cfg := config.Default()
	cfg.MethodGrouping.SeparateAssertions = false

	_, methods := groupFirstPage(t, input, cfg)
	require.Len(t, methods, 1)
	assert.Equal(t, []int{0}, methods[0].AssertionIdx)
}

// TestGroupMethods_WaitForURLTerminates tests that a same-page URL wait
// closes the method after joining it.
func TestGroupMethods_WaitForURLTerminates(t *testing.T) {
	input := `await page.goto('https://example.com/settings');
await page.click('#save');
await page.waitForURL('**/settings/saved');
await page.click('#back');`

	_, methods := groupFirstPage(t, input, config.Default())
	require.Len(t, methods, 2)
	assert.Len(t, methods[0].ActionIdx, 2)

	// Crossing a URL wait raises complexity.
	assert.GreaterOrEqual(t, methods[0].Complexity, 20)
}

// TestGroupMethods_SeparateNavigation tests navigation isolation when a
// mid-page goto survives page detection.
func TestGroupMethods_SeparateNavigation(t *testing.T) {
	input := `await page.goto('https://example.com/a');
await page.fill('#x', '1');
await page.goto('https://example.com/b');
await page.fill('#y', '2');`

	cfg := config.Default()
	cfg.PageDetection.URLChangeCreatesNewPage = false
	cfg.MethodGrouping.SeparateNavigation = true

	_, methods := groupFirstPage(t, input, cfg)
	require.Len(t, methods, 3)
	assert.Len(t, methods[1].ActionIdx, 1, "the goto stands alone")
}

// TestGroupMethods_GenericFallback tests the numbered fallback name when
// no naming signal exists.
func TestGroupMethods_GenericFallback(t *testing.T) {
	input := `await page.keyboard.press('PageDown');`

	_, methods := groupFirstPage(t, input, config.Default())
	require.Len(t, methods, 1)

	m := methods[0]
	assert.Equal(t, "performAction1", m.Name)
	assert.Equal(t, 55, m.Confidence)
	assert.True(t, m.GenericName)
	assert.NotEmpty(t, m.Alternatives)
}

// TestGroupMethods_UploadComplexity tests the upload complexity signal.
func TestGroupMethods_UploadComplexity(t *testing.T) {
	input := `await page.goto('https://example.com/profile');
await page.fill('#name', 'Alice');
await page.fill('#bio', 'Hello there');
await page.setInputFiles('#avatar', 'photo.png');
await page.click('.submit-button');`

	_, methods := groupFirstPage(t, input, config.Default())
	require.Len(t, methods, 1)

	// 4 actions, 3 parameters, plus the upload signal.
	assert.Equal(t, 80, methods[0].Complexity)
}

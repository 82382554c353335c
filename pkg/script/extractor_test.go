package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtract_Classification tests statement kind and field extraction for
// the recognized statement forms.
func TestExtract_Classification(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     Kind
		verb     string
		selector string
		url      string
		literals []string
	}{
		{
			name:  "goto navigation",
			input: "await page.goto('https://example.com/login');",
			kind:  KindNavigation,
			verb:  "goto",
			url:   "https://example.com/login",
		},
		{
			name:     "old-style fill with selector argument",
			input:    "await page.fill('#email', 'user@example.com');",
			kind:     KindInteraction,
			verb:     "fill",
			selector: "#email",
			literals: []string{"user@example.com"},
		},
		{
			name:     "locator chain collapses to css",
			input:    "await page.locator('#login-form').locator('.submit').click();",
			kind:     KindInteraction,
			verb:     "click",
			selector: "#login-form .submit",
		},
		{
			name:     "getByRole chain keeps accessor text",
			input:    "await page.getByRole('button', { name: 'Sign in' }).click();",
			kind:     KindInteraction,
			verb:     "click",
			selector: "getByRole('button', { name: 'Sign in' })",
		},
		{
			name:     "getByTestId click",
			input:    "await page.getByTestId('submit-btn').click();",
			kind:     KindInteraction,
			verb:     "click",
			selector: "getByTestId('submit-btn')",
		},
		{
			name:     "assertion with selector and expected value",
			input:    "await expect(page.locator('.welcome')).toContainText('Alice');",
			kind:     KindAssertion,
			verb:     "toContainText",
			selector: ".welcome",
			literals: []string{"Alice"},
		},
		{
			name:  "negated assertion keeps full matcher name",
			input: "await expect(page.locator('.spinner')).not.toBeVisible();",
			kind:  KindAssertion,
			verb:  "toBeVisible",
			// the not. prefix is the classifier's concern, not the extractor's
			selector: ".spinner",
		},
		{
			name:  "waitForURL",
			input: "await page.waitForURL('**/dashboard');",
			kind:  KindWait,
			verb:  "waitForURL",
			url:   "**/dashboard",
		},
		{
			name:     "waitForSelector",
			input:    "await page.waitForSelector('.results');",
			kind:     KindWait,
			verb:     "waitForSelector",
			selector: ".results",
		},
		{
			name:     "waitForTimeout",
			input:    "await page.waitForTimeout(3000);",
			kind:     KindWait,
			verb:     "waitForTimeout",
			literals: []string{"3000"},
		},
		{
			name:     "keyboard press targets no element",
			input:    "await page.keyboard.press('Enter');",
			kind:     KindInteraction,
			verb:     "press",
			literals: []string{"Enter"},
		},
		{
			name:  "comment is structural",
			input: "// log in first",
			kind:  KindStructural,
		},
		{
			name:  "block opener is structural",
			input: "test('login flow', async ({ page }) => {",
			kind:  KindStructural,
		},
		{
			name:  "closing braces are structural",
			input: "});",
			kind:  KindStructural,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := Extract(tt.input)
			require.Len(t, stmts, 1)
			st := stmts[0]

			assert.Equal(t, tt.kind, st.Kind)
			assert.Equal(t, tt.verb, st.ActionVerb)
			assert.Equal(t, tt.selector, st.SelectorExpression)
			assert.Equal(t, tt.url, st.TargetURL)
			if tt.literals != nil {
				assert.Equal(t, tt.literals, st.LiteralArguments)
			}
		})
	}
}

// TestExtract_ChainedReceivers tests that chained calls are recognized
// whatever identifier precedes the dot; the dot itself is the boundary.
func TestExtract_ChainedReceivers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		verb  string
		url   string
	}{
		{"goto on page", "await page.goto('/login');", KindNavigation, "goto", "/login"},
		{"goto on nested receiver", "await this.page.goto('/admin');", KindNavigation, "goto", "/admin"},
		{"waitForURL", "await page.waitForURL('**/orders');", KindWait, "waitForURL", "**/orders"},
		{"waitForLoadState", "await page.waitForLoadState('networkidle');", KindWait, "waitForLoadState", ""},
		{"waitForEvent on context", "const p = await context.waitForEvent('popup');", KindWait, "waitForEvent", ""},
		{"dialog handler", "page.on('dialog', dialog => dialog.accept());", KindInteraction, "onDialog", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := Extract(tt.input)
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.kind, stmts[0].Kind)
			assert.Equal(t, tt.verb, stmts[0].ActionVerb)
			assert.Equal(t, tt.url, stmts[0].TargetURL)
		})
	}
}

// TestExtract_ParensInLiterals tests that call-shaped text inside string
// arguments never hijacks verb detection.
func TestExtract_ParensInLiterals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		kind     Kind
		verb     string
		selector string
		literals []string
	}{
		{
			name:     "fill value containing a dotted call",
			input:    "await page.fill('#q', 'foo.click(x)');",
			kind:     KindInteraction,
			verb:     "fill",
			selector: "#q",
			literals: []string{"foo.click(x)"},
		},
		{
			name:     "assertion expected value containing a dotted call",
			input:    "await expect(page.locator('.msg')).toContainText('retry api.close() soon');",
			kind:     KindAssertion,
			verb:     "toContainText",
			selector: ".msg",
			literals: []string{"retry api.close() soon"},
		},
		{
			name:     "accessor text containing parens",
			input:    "await page.getByText('Open menu (beta)').click();",
			kind:     KindInteraction,
			verb:     "click",
			selector: "getByText('Open menu (beta)')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := Extract(tt.input)
			require.Len(t, stmts, 1)
			st := stmts[0]
			assert.Equal(t, tt.kind, st.Kind)
			assert.Equal(t, tt.verb, st.ActionVerb)
			assert.Equal(t, tt.selector, st.SelectorExpression)
			if tt.literals != nil {
				assert.Equal(t, tt.literals, st.LiteralArguments)
			}
		})
	}
}

// TestExtract_Subtypes tests the interaction subtypes the page heuristics
// rely on.
func TestExtract_Subtypes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		subtype Subtype
	}{
		{"file upload", "await page.setInputFiles('#avatar', 'photo.png');", SubtypeUpload},
		{"dialog accept", "await dialog.accept();", SubtypeDialog},
		{"new tab", "const page2 = await context.newPage();", SubtypeTab},
		{"popup wait", "const popup = await page.waitForEvent('popup');", SubtypeTab},
		{"plain click", "await page.click('#go');", SubtypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := Extract(tt.input)
			require.Len(t, stmts, 1)
			assert.Equal(t, tt.subtype, stmts[0].Subtype)
		})
	}
}

// TestExtract_MultiLine tests continuation collapsing and line ownership.
func TestExtract_MultiLine(t *testing.T) {
	input := "await page.fill(\n  '#email',\n  'user@example.com'\n);\nawait page.click('#go');"

	stmts := Extract(input)
	require.Len(t, stmts, 2)

	assert.Equal(t, 1, stmts[0].LineNumber, "multi-line statement owns its first line")
	assert.Equal(t, KindInteraction, stmts[0].Kind)
	assert.Equal(t, "fill", stmts[0].ActionVerb)
	assert.Equal(t, "#email", stmts[0].SelectorExpression)
	assert.Equal(t, []string{"user@example.com"}, stmts[0].LiteralArguments)

	assert.Equal(t, 5, stmts[1].LineNumber)
	assert.Equal(t, "click", stmts[1].ActionVerb)
}

// TestExtract_FullScript tests a realistic script body: block delimiters
// stay structural and semantic lines keep their source line numbers.
func TestExtract_FullScript(t *testing.T) {
	input := `test('login', async ({ page }) => {
  await page.goto('https://example.com/login');
  await page.fill('#email', 'user@example.com');
  await page.fill('#password', 'hunter2');
  await page.click('.submit-button');
  await page.waitForURL('**/dashboard');
  await expect(page.locator('.welcome')).toContainText('Welcome');
});`

	stmts := Extract(input)
	require.Len(t, stmts, 8)

	assert.Equal(t, KindStructural, stmts[0].Kind)
	assert.Equal(t, KindNavigation, stmts[1].Kind)
	assert.Equal(t, KindInteraction, stmts[2].Kind)
	assert.Equal(t, KindInteraction, stmts[3].Kind)
	assert.Equal(t, KindInteraction, stmts[4].Kind)
	assert.Equal(t, KindWait, stmts[5].Kind)
	assert.Equal(t, KindAssertion, stmts[6].Kind)
	assert.Equal(t, KindStructural, stmts[7].Kind)

	for i, st := range stmts {
		assert.Equal(t, i+1, st.LineNumber)
	}
	assert.True(t, HasSemantic(stmts))
}

func TestHasSemantic_StructuralOnly(t *testing.T) {
	stmts := Extract("// nothing here\n\n// just comments")
	assert.False(t, HasSemantic(stmts))
}

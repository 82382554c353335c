package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassify_Strategy tests the strategy precedence order over the
// accessor and raw-selector forms.
func TestClassify_Strategy(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		strategy Strategy
	}{
		{"testid accessor", "getByTestId('user-menu')", StrategyTestID},
		{"testid attribute", "[data-testid=\"user-menu\"]", StrategyTestID},
		{"testid wins over role text", "getByTestId('modal-button')", StrategyTestID},
		{"role accessor", "getByRole('button', { name: 'Sign in' })", StrategyRole},
		{"role prefix", "role=button[name=\"Sign in\"]", StrategyRole},
		{"text accessor", "getByText('Logout')", StrategyText},
		{"label accessor", "getByLabel('Email address')", StrategyText},
		{"has-text pseudo", "button:has-text('Save')", StrategyText},
		{"xpath slashes", "//div[@class='form']/button", StrategyXPath},
		{"xpath prefix", "xpath=//button[2]", StrategyXPath},
		{"placeholder accessor", "getByPlaceholder('Email')", StrategyPlaceholder},
		{"placeholder attribute", "input[placeholder=\"Search\"]", StrategyPlaceholder},
		{"bare class is css", ".submit-button", StrategyCSS},
		{"bare id is css", "#login-form", StrategyCSS},
		{"attribute selector is css", "input[name=\"email\"]", StrategyCSS},
		{"empty input is css", "", StrategyCSS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.strategy, Classify(tt.raw).Strategy)
		})
	}
}

// TestClassify_Details tests structured-detail extraction.
func TestClassify_Details(t *testing.T) {
	t.Run("role and accessible name from accessor", func(t *testing.T) {
		sel := Classify("getByRole('button', { name: 'Sign in' })")
		assert.Equal(t, "button", sel.Details.Role)
		assert.Equal(t, "Sign in", sel.Details.AccessibleName)
	})

	t.Run("role and name from prefix form", func(t *testing.T) {
		sel := Classify("role=link[name=\"Docs\"]")
		assert.Equal(t, "link", sel.Details.Role)
		assert.Equal(t, "Docs", sel.Details.AccessibleName)
	})

	t.Run("testid value from accessor", func(t *testing.T) {
		sel := Classify("getByTestId('user-menu')")
		assert.Equal(t, "user-menu", sel.Details.Attributes["data-testid"])
	})

	t.Run("css attributes", func(t *testing.T) {
		sel := Classify("input[name=\"email\"][type=\"text\"]")
		assert.Equal(t, "email", sel.Details.Attributes["name"])
		assert.Equal(t, "text", sel.Details.Attributes["type"])
	})

	t.Run("prefix operators are dropped from attribute keys", func(t *testing.T) {
		sel := Classify("a[href^=\"/account\"]")
		assert.Equal(t, "/account", sel.Details.Attributes["href"])
	})

	t.Run("placeholder value from accessor", func(t *testing.T) {
		sel := Classify("getByPlaceholder('Email')")
		assert.Equal(t, "Email", sel.Details.Attributes["placeholder"])
	})
}

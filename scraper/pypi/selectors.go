package pypi

import "pypi-scraper/browser"

// Selectors for the pypi.org search UI, kept in one place so markup changes
// only touch this file.
var (
	cardSelector = browser.CSS(`a.package-snippet`)

	consentSelector = browser.CSS(`#accept-cookies`)

	nextSelector = browser.XPath(`//*[contains(text(), 'Next') and contains(@class, 'button') ` +
		`and contains(@class, 'button-group__button') and not(contains(@class, 'button--disabled'))]`)

	disabledNextSelector = browser.XPath(`//*[contains(text(), 'Next') and contains(@class, 'button-group__button') ` +
		`and contains(@class, 'button--disabled')]`)
)

// Card sub-elements, queried on the card snapshot rather than the live page.
const (
	nameSelector        = `span.package-snippet__name`
	descriptionSelector = `p.package-snippet__description`
)

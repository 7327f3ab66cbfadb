package browser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// queryAll resolves a CSS query or an XPath expression to an element array.
const queryAll = `(q, xpath) => {
	if (!xpath) return Array.from(document.querySelectorAll(q));
	const snap = document.evaluate(q, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	const out = [];
	for (let i = 0; i < snap.snapshotLength; i++) out.push(snap.snapshotItem(i));
	return out;
}`

const (
	refsVar = "window.__pypiScraperRefs"

	outerHTMLScript = `(q, xpath) => (` + queryAll + `)(q, xpath).map(el => el.outerHTML)`

	countScript = `(q, xpath) => (` + queryAll + `)(q, xpath).length`

	markScript = `(q, xpath, token) => {
	const el = (` + queryAll + `)(q, xpath)[0];
	if (!el) return false;
	` + refsVar + ` = ` + refsVar + ` || {};
	` + refsVar + `[token] = el;
	return true;
}`

	// A fresh document has no refs at all, which also counts as detached.
	detachedScript = `(token) => {
	const refs = ` + refsVar + `;
	return !refs || !refs[token] || !refs[token].isConnected;
}`

	scrollBottomScript = `() => window.scrollTo(0, document.body.scrollHeight)`
)

// invoke renders a call of fn with JSON-encoded arguments, for backends that
// evaluate plain expressions. Only strings and bools are accepted.
func invoke(fn string, args ...any) (string, error) {
	encoded := make([]string, 0, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			b, err := json.Marshal(v)
			if err != nil {
				return "", fmt.Errorf("encode argument %d: %w", i, err)
			}
			encoded = append(encoded, string(b))
		case bool:
			encoded = append(encoded, strconv.FormatBool(v))
		default:
			return "", fmt.Errorf("unsupported script argument %d of type %T", i, a)
		}
	}
	return "(" + fn + ")(" + strings.Join(encoded, ", ") + ")", nil
}

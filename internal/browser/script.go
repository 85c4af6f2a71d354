package browser

import (
	"fmt"
	"strconv"
)

// lit renders s as a JavaScript string literal.
func lit(s string) string { return strconv.Quote(s) }

func existsExpr(selector string) string {
	return fmt.Sprintf("document.querySelector(%s) !== null", lit(selector))
}

func clickExpr(selector string) string {
	return fmt.Sprintf(
		"(() => { const el = document.querySelector(%s); if (!el) return false; el.click(); return true; })()",
		lit(selector))
}

func focusExpr(selector string) string {
	return fmt.Sprintf(
		"(() => { const el = document.querySelector(%s); if (!el) return false; el.focus(); return true; })()",
		lit(selector))
}

// clearExpr empties an input or textarea through the element
// prototype's value setter so framework-managed controls observe the
// change, then dispatches an input event.
func clearExpr(selector string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  const proto = el.tagName === 'TEXTAREA' ? HTMLTextAreaElement.prototype : HTMLInputElement.prototype;
  const desc = Object.getOwnPropertyDescriptor(proto, 'value');
  if (desc && desc.set) { desc.set.call(el, ''); } else { el.value = ''; }
  el.dispatchEvent(new Event('input', { bubbles: true }));
  return true;
})()`, lit(selector))
}

func textAllExpr(selector string) string {
	return fmt.Sprintf(
		"Array.from(document.querySelectorAll(%s), el => el.textContent.trim())",
		lit(selector))
}

func outerHTMLExpr(selector string) string {
	return fmt.Sprintf(
		"(() => { const el = document.querySelector(%s); return el ? el.outerHTML : null; })()",
		lit(selector))
}

func xpathAllExpr(xpath string) string {
	return fmt.Sprintf(`(() => {
  const it = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
  const out = [];
  for (let i = 0; i < it.snapshotLength; i++) out.push(it.snapshotItem(i).textContent.trim());
  return out;
})()`, lit(xpath))
}

func xpathExistsExpr(xpath string) string {
	return fmt.Sprintf(
		"document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue !== null",
		lit(xpath))
}

func xpathClickExpr(xpath string) string {
	return fmt.Sprintf(`(() => {
  const res = document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null);
  const el = res.singleNodeValue;
  if (!el) return false;
  el.click();
  return true;
})()`, lit(xpath))
}

// selectSetExpr commits value on a native <select> and fires a change
// event, the protocol the composite date picker's year and month
// selectors respond to.
func selectSetExpr(selector, value string) string {
	return fmt.Sprintf(`(() => {
  const el = document.querySelector(%s);
  if (!el) return false;
  el.value = %s;
  el.dispatchEvent(new Event('change', { bubbles: true }));
  return true;
})()`, lit(selector), lit(value))
}

package browser

// clickFirstJS clicks the first element matching any selector in %s (a JSON
// array) and returns its index, or -1. Invalid selectors are skipped.
const clickFirstJS = `(function (sels) {
  for (let i = 0; i < sels.length; i++) {
    let el = null;
    try { el = document.querySelector(sels[i]); } catch (e) { continue; }
    if (el) {
      el.click();
      return i;
    }
  }
  return -1;
})(%s)`

// scrollJS scrolls the review pane when one is scrollable, otherwise the
// window. Returns true when the pane was used.
const scrollJS = `(function (dy) {
  const panes = document.querySelectorAll('div.m6QErb.DxyBCb, div.m6QErb[tabindex="-1"], div[role="feed"]');
  for (const p of panes) {
    if (p.scrollHeight > p.clientHeight) {
      p.scrollBy(0, dy);
      return true;
    }
  }
  window.scrollBy(0, dy);
  return false;
})(%d)`

// Package domscript holds the in-page JavaScript that the browser package
// installs into every page it controls. These functions are the "pre-
// installed" page-side scripts the act/extract/observe loops treat as an
// external collaborator: the loops only know the shapes documented on
// internal/browser's Chunk type and Session methods, never the script
// bodies themselves.
package domscript

// ProcessDom returns exactly one chunk of the page's interactive elements
// that is not present in the chunksSeen argument, as
// {outputString, selectorMap, chunk, chunks}. When every chunk is already in
// chunksSeen it returns an empty outputString and selectorMap with chunk
// -1. Elements are numbered in DOM
// order and partitioned into fixed-size buckets so a single chunk's
// outputString stays within a bounded character budget for the LLM.
const ProcessDom = `
(function (chunksSeen) {
  chunksSeen = chunksSeen || [];
  var seen = new Set(chunksSeen);
  var walked = window.__browserloopWalk();
  var chunks = walked.chunks;
  var chosen = -1;
  for (var i = 0; i < chunks.length; i++) {
    if (!seen.has(chunks[i])) { chosen = chunks[i]; break; }
  }
  if (chosen === -1) {
    return { outputString: "", selectorMap: {}, chunk: -1, chunks: chunks };
  }
  var lines = walked.chunkLines[chosen] || [];
  var selectorMap = {};
  for (var j = 0; j < lines.length; j++) {
    selectorMap[lines[j].id] = lines[j].xpath;
  }
  var outputString = lines.map(function (l) { return l.id + ":" + l.text; }).join("\n");
  return { outputString: outputString, selectorMap: selectorMap, chunk: chosen, chunks: chunks };
})
`

// ProcessAllOfDom returns the full-page flat serialization, unchunked, as
// {outputString, selectorMap}.
const ProcessAllOfDom = `
(function () {
  var walked = window.__browserloopWalk();
  var selectorMap = {};
  var textLines = [];
  for (var c = 0; c < walked.chunks.length; c++) {
    var lines = walked.chunkLines[walked.chunks[c]] || [];
    for (var j = 0; j < lines.length; j++) {
      selectorMap[lines[j].id] = lines[j].xpath;
      textLines.push(lines[j].id + ":" + lines[j].text);
    }
  }
  return { outputString: textLines.join("\n"), selectorMap: selectorMap };
})
`

// WaitForDomSettle resolves once the page has produced no DOM mutations
// for stabilityMs, or rejects-into-resolve after maxWaitMs so the caller's
// own timeout race is the only hard deadline.
const WaitForDomSettle = `
(function (stabilityMs, maxWaitMs) {
  return new Promise(function (resolve) {
    var lastMutation = Date.now();
    var start = lastMutation;
    var observer = new MutationObserver(function () { lastMutation = Date.now(); });
    observer.observe(document.documentElement || document.body, {
      childList: true, subtree: true, attributes: true, characterData: true
    });
    var interval = setInterval(function () {
      var now = Date.now();
      if (now - lastMutation >= stabilityMs || now - start >= maxWaitMs) {
        clearInterval(interval);
        observer.disconnect();
        resolve(true);
      }
    }, 50);
  });
})
`

// ScrollToHeight scrolls the window to an absolute vertical offset.
const ScrollToHeight = `
(function (y) { window.scrollTo(0, y); })
`

// DebugDom draws an unlabeled outline over every element the last walk
// classified as interactive. Idempotent: re-running clears prior overlays.
const DebugDom = `
(function () {
  window.__browserloopCleanupDebug && window.__browserloopCleanupDebug();
  var walked = window.__browserloopWalk();
  var overlays = [];
  for (var c = 0; c < walked.chunks.length; c++) {
    var lines = walked.chunkLines[walked.chunks[c]] || [];
    for (var j = 0; j < lines.length; j++) {
      var el = document.querySelector('[data-bl-id="' + lines[j].id + '"]');
      if (!el) continue;
      var rect = el.getBoundingClientRect();
      var box = document.createElement("div");
      box.setAttribute("data-bl-debug-overlay", "1");
      box.style.position = "fixed";
      box.style.zIndex = "2147483647";
      box.style.border = "2px solid #ff3366";
      box.style.pointerEvents = "none";
      box.style.left = rect.left + "px";
      box.style.top = rect.top + "px";
      box.style.width = rect.width + "px";
      box.style.height = rect.height + "px";
      document.body.appendChild(box);
      overlays.push(box);
    }
  }
  window.__browserloopDebugOverlays = overlays;
})
`

// CleanupDebug removes every overlay DebugDom drew.
const CleanupDebug = `
(function () {
  var existing = document.querySelectorAll("[data-bl-debug-overlay]");
  existing.forEach(function (el) { el.remove(); });
  window.__browserloopDebugOverlays = [];
})
`

// Walker is installed once per page (via AddInitScript + an immediate
// Evaluate for pages that already have content) and backs all of the
// above. It is intentionally a single shared implementation so that
// ProcessDom and ProcessAllOfDom agree on what "interactive" and "chunk"
// mean.
const Walker = `
(function () {
  var MAX_CHUNK_CHARS = 4000;
  var interactiveTags = ["a", "button", "input", "textarea", "select", "details", "summary"];

  function cleanText(text) {
    if (!text) return "";
    var res = text.replace(/\s+/g, " ").trim();
    if (res.length > 120) return res.slice(0, 120) + "...";
    return res;
  }

  function isVisible(el) {
    if (!el || !el.getBoundingClientRect) return false;
    if (el.getAttribute("aria-hidden") === "true") return false;
    var rect = el.getBoundingClientRect();
    var style = window.getComputedStyle(el);
    return rect.width > 0 && rect.height > 0 &&
      style.visibility !== "hidden" && style.display !== "none" && style.opacity !== "0";
  }

  function isInteractive(el) {
    var tag = el.tagName.toLowerCase();
    var role = (el.getAttribute("role") || "").toLowerCase();
    var tabIndex = el.getAttribute("tabindex");
    return interactiveTags.indexOf(tag) !== -1 ||
      ["button", "link", "checkbox", "menuitem", "tab", "textbox", "combobox", "option"].indexOf(role) !== -1 ||
      (tabIndex !== null && tabIndex !== "-1") ||
      el.onclick != null;
  }

  function label(el) {
    var tag = el.tagName.toLowerCase();
    var text = cleanText(el.innerText || el.textContent || "");
    if (!text) text = cleanText(el.getAttribute("aria-label") || "");
    if (!text) text = cleanText(el.getAttribute("title") || "");
    if ((tag === "input" || tag === "textarea") && !text) {
      text = cleanText(el.getAttribute("placeholder") || "");
    }
    return text;
  }

  function xpathOf(el) {
    if (el === document.body) return "/html/body";
    var parts = [];
    var node = el;
    while (node && node.nodeType === Node.ELEMENT_NODE && node !== document.body) {
      var index = 1;
      var sibling = node.previousElementSibling;
      while (sibling) {
        if (sibling.tagName === node.tagName) index++;
        sibling = sibling.previousElementSibling;
      }
      parts.unshift(node.tagName.toLowerCase() + "[" + index + "]");
      node = node.parentElement;
    }
    return "/html/body/" + parts.join("/");
  }

  function walk() {
    document.querySelectorAll("[data-bl-id]").forEach(function (el) {
      el.removeAttribute("data-bl-id");
    });

    var idCounter = 1;
    var allLines = [];

    (function traverse(node) {
      if (!node || node.nodeType !== Node.ELEMENT_NODE) return;
      var tag = node.tagName.toLowerCase();
      if (["script", "style", "svg", "path", "noscript"].indexOf(tag) !== -1) return;
      if (!isVisible(node)) return;

      if (isInteractive(node)) {
        var id = idCounter++;
        node.setAttribute("data-bl-id", String(id));
        var kind = tag === "input" ? (node.getAttribute("type") || "text") : tag;
        var text = label(node) + " kind=" + kind;
        allLines.push({ id: id, text: text, xpath: xpathOf(node) });
      }

      for (var i = 0; i < node.children.length; i++) {
        traverse(node.children[i]);
      }
    })(document.body);

    var chunks = [];
    var chunkLines = {};
    var chunkIndex = 0;
    var currentLen = 0;
    chunkLines[0] = [];
    chunks.push(0);

    for (var k = 0; k < allLines.length; k++) {
      var line = allLines[k];
      var lineLen = String(line.id).length + line.text.length + 1;
      if (currentLen + lineLen > MAX_CHUNK_CHARS && chunkLines[chunkIndex].length > 0) {
        chunkIndex++;
        chunks.push(chunkIndex);
        chunkLines[chunkIndex] = [];
        currentLen = 0;
      }
      chunkLines[chunkIndex].push(line);
      currentLen += lineLen;
    }

    return { chunks: chunks, chunkLines: chunkLines };
  }

  window.__browserloopWalk = walk;
  window.__browserloopCleanupDebug = function () {
    document.querySelectorAll("[data-bl-debug-overlay]").forEach(function (el) { el.remove(); });
  };
})
`

package api

const eventsDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Event Streams · Chart Drawing API</title>
  <style>
    *, *::before, *::after { box-sizing: border-box; }

    body {
      margin: 0;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", sans-serif;
      font-size: 14px;
      line-height: 1.65;
      background: #0d1117;
      color: #c9d1d9;
      display: flex;
      flex-direction: column;
      min-height: 100vh;
    }

    a { color: #58a6ff; text-decoration: none; }
    a:hover { text-decoration: underline; }

    /* ── top nav ── */
    nav {
      background: #161b22;
      border-bottom: 1px solid #30363d;
      padding: 0 24px;
      height: 48px;
      display: flex;
      align-items: center;
      gap: 24px;
      flex-shrink: 0;
    }
    nav .brand {
      font-weight: 600;
      font-size: 15px;
      color: #e6edf3;
    }
    nav .sep { color: #484f58; }
    nav .current { color: #e6edf3; font-weight: 500; }
    nav .back { font-size: 13px; }

    /* ── layout ── */
    .layout {
      display: flex;
      flex: 1;
      max-width: 1100px;
      width: 100%;
      margin: 0 auto;
      padding: 0 16px;
    }

    /* ── sidebar ── */
    aside {
      width: 220px;
      flex-shrink: 0;
      padding: 32px 16px 32px 0;
      position: sticky;
      top: 0;
      height: calc(100vh - 48px);
      overflow-y: auto;
    }
    aside h4 {
      margin: 0 0 8px;
      font-size: 11px;
      font-weight: 600;
      text-transform: uppercase;
      letter-spacing: .08em;
      color: #8b949e;
    }
    aside ul {
      list-style: none;
      margin: 0 0 24px;
      padding: 0;
    }
    aside ul li a {
      display: block;
      padding: 4px 8px;
      border-radius: 4px;
      font-size: 13px;
      color: #8b949e;
    }
    aside ul li a:hover {
      background: #21262d;
      color: #c9d1d9;
      text-decoration: none;
    }

    /* ── main content ── */
    main {
      flex: 1;
      padding: 32px 0 64px 32px;
      border-left: 1px solid #21262d;
      min-width: 0;
    }

    h1 {
      margin: 0 0 8px;
      font-size: 28px;
      font-weight: 600;
      color: #e6edf3;
    }
    .subtitle {
      color: #8b949e;
      margin: 0 0 36px;
      font-size: 15px;
    }

    h2 {
      margin: 40px 0 12px;
      font-size: 18px;
      font-weight: 600;
      color: #e6edf3;
      padding-bottom: 8px;
      border-bottom: 1px solid #21262d;
    }
    h3 {
      margin: 28px 0 10px;
      font-size: 15px;
      font-weight: 600;
      color: #e6edf3;
    }

    p { margin: 0 0 12px; }

    /* ── method + path badge ── */
    .endpoint {
      display: inline-flex;
      align-items: center;
      gap: 10px;
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 6px;
      padding: 10px 16px;
      margin-bottom: 20px;
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 14px;
    }
    .method {
      background: #1f6feb;
      color: #fff;
      font-weight: 700;
      font-size: 11px;
      padding: 2px 7px;
      border-radius: 4px;
      letter-spacing: .04em;
    }
    .path { color: #e6edf3; }

    /* ── tables ── */
    table {
      width: 100%;
      border-collapse: collapse;
      margin-bottom: 20px;
      font-size: 13px;
    }
    th {
      text-align: left;
      padding: 8px 12px;
      background: #161b22;
      color: #8b949e;
      font-weight: 600;
      border-bottom: 1px solid #30363d;
    }
    td {
      padding: 8px 12px;
      border-bottom: 1px solid #21262d;
      vertical-align: top;
    }
    tr:last-child td { border-bottom: none; }
    code {
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 12px;
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 3px;
      padding: 1px 5px;
      color: #e6edf3;
    }

    /* ── code blocks ── */
    pre {
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 6px;
      padding: 16px;
      overflow-x: auto;
      margin: 0 0 20px;
    }
    pre code {
      background: none;
      border: none;
      padding: 0;
      font-size: 13px;
      line-height: 1.6;
      color: #c9d1d9;
    }

    /* ── callout ── */
    .callout {
      background: #161b22;
      border-left: 3px solid #1f6feb;
      border-radius: 0 6px 6px 0;
      padding: 12px 16px;
      margin-bottom: 20px;
      font-size: 13px;
    }
    .callout.warning { border-color: #d29922; }
    .callout strong { color: #e6edf3; }

    /* ── event cards ── */
    .event-card {
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 8px;
      padding: 16px 20px;
      margin-bottom: 14px;
    }
    .event-card h3 { margin: 0 0 10px; font-size: 14px; }
    .event-card code { font-size: 13px; }
    .event-meta {
      display: flex;
      flex-wrap: wrap;
      gap: 8px;
      margin-bottom: 10px;
      font-size: 12px;
    }
    .event-meta span { color: #8b949e; }
    .tag {
      background: #21262d;
      border: 1px solid #30363d;
      border-radius: 3px;
      padding: 1px 6px;
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 11px;
      color: #8b949e;
    }

    /* ── SSE format visualization ── */
    .sse-block {
      background: #161b22;
      border: 1px solid #30363d;
      border-radius: 6px;
      padding: 16px;
      margin-bottom: 20px;
      font-family: "SFMono-Regular", Consolas, "Liberation Mono", Menlo, monospace;
      font-size: 13px;
      line-height: 1.8;
    }
    .sse-key { color: #79c0ff; }
    .sse-value { color: #a5d6ff; }
    .sse-comment { color: #484f58; }
  </style>
</head>
<body>

<nav>
  <span class="brand">Chart Drawing</span>
  <span class="sep">/</span>
  <span class="current">Event Streams</span>
  <a class="back" href="/docs">← REST API Docs</a>
</nav>

<div class="layout">

  <aside>
    <h4>On this page</h4>
    <ul>
      <li><a href="#overview">Overview</a></li>
      <li><a href="#endpoints">Endpoints</a></li>
      <li><a href="#types">Event Types</a></li>
      <li><a href="#format">Event Format</a></li>
      <li><a href="#examples">Examples</a></li>
      <li><a href="#notes">Notes</a></li>
    </ul>
  </aside>

  <main>
    <h1>Event Streams</h1>
    <p class="subtitle">Follow selection, context menu, tool and study changes of every open chart session.</p>

    <!-- OVERVIEW -->
    <h2 id="overview">Overview</h2>
    <p>
      Each chart session publishes a notification whenever its interaction state changes.
      Clients can follow these notifications over Server-Sent Events or over a WebSocket.
      Both transports carry the same JSON events.
    </p>

    <!-- ENDPOINTS -->
    <h2 id="endpoints">Endpoints</h2>
    <div class="endpoint">
      <span class="method">GET</span>
      <span class="path">/api/v1/events</span>
    </div>
    <div class="endpoint">
      <span class="method">GET</span>
      <span class="path">/api/v1/events/ws</span>
    </div>

    <h3>Query Parameters</h3>
    <table>
      <thead>
        <tr><th>Name</th><th>Required</th><th>Description</th></tr>
      </thead>
      <tbody>
        <tr>
          <td><code>symbols</code></td>
          <td>No</td>
          <td>Comma-separated chart symbols. Omit to receive events for every session.</td>
        </tr>
      </tbody>
    </table>

    <!-- TYPES -->
    <h2 id="types">Event Types</h2>

    <div class="event-card">
      <h3><code>selection</code></h3>
      <p>The selected study changed. An empty <code>id</code> means nothing is selected.</p>
      <pre><code>{"id": "3f1c..."}</code></pre>
    </div>

    <div class="event-card">
      <h3><code>context_menu</code></h3>
      <p>A secondary click landed on a study. Coordinates are chart pixels.</p>
      <pre><code>{"x": 412, "y": 188, "id": "3f1c..."}</code></pre>
    </div>

    <div class="event-card">
      <h3><code>tool</code></h3>
      <p>The active drawing tool changed, including the automatic return to <code>pointer</code> after a placement.</p>
      <pre><code>{"tool": "trendline"}</code></pre>
    </div>

    <div class="event-card">
      <h3><code>studies</code></h3>
      <p>The study set was persisted. Carries the full serialized record written to the cache.</p>
      <pre><code>{"version": 1, "drawings": [{"id": "3f1c...", "type": "horizontal_line", "color": "#2962ff", "lineWidth": 2, "price": 101.5}]}</code></pre>
    </div>

    <div class="event-card">
      <h3><code>session</code></h3>
      <p>A chart session was opened or closed.</p>
      <pre><code>{"status": "opened"}</code></pre>
    </div>

    <!-- FORMAT -->
    <h2 id="format">Event Format</h2>
    <p>Over SSE each event is written with its type as the event name:</p>
    <div class="sse-block">
      <span class="sse-key">event:</span> <span class="sse-value">selection</span><br>
      <span class="sse-key">data:</span> <span class="sse-value">{"type":"selection","symbol":"BINANCE:BTCUSDT","time":"2026-01-02T15:04:05Z","payload":{"id":"3f1c..."}}</span><br>
      <span class="sse-comment">(blank line)</span>
    </div>
    <p>Over the WebSocket each event is one text frame holding the same JSON object.</p>

    <!-- EXAMPLES -->
    <h2 id="examples">Examples</h2>

    <h3>Browser · EventSource</h3>
    <pre><code>const es = new EventSource("/api/v1/events?symbols=BINANCE:BTCUSDT");
es.addEventListener("selection", (e) =&gt; {
  const evt = JSON.parse(e.data);
  console.log("selected", evt.payload.id);
});</code></pre>

    <h3>Browser · WebSocket</h3>
    <pre><code>const ws = new WebSocket("ws://127.0.0.1:8190/api/v1/events/ws");
ws.onmessage = (e) =&gt; console.log(JSON.parse(e.data));</code></pre>

    <h3>curl</h3>
    <pre><code>curl -N http://127.0.0.1:8190/api/v1/events</code></pre>

    <!-- NOTES -->
    <h2 id="notes">Notes</h2>
    <ul>
      <li>
        <strong>Back-pressure:</strong> each subscriber has a 256-event buffer.
        Events for a slow client are dropped and counted in <code>droppedEvents</code> on <code>/api/v1/health</code>.
      </li>
      <li>
        <strong>Reconnection:</strong> <code>EventSource</code> reconnects on its own.
        Other clients should reconnect with backoff and re-read <code>/state</code>.
      </li>
      <li>
        <strong>Authentication:</strong> none. Keep the server bound to <code>127.0.0.1</code>.
      </li>
    </ul>

  </main>
</div>

</body>
</html>`

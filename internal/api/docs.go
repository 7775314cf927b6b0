package api

import "github.com/danielgtaylor/huma/v2"

const apiDescription = `Drives server-side chart drawing sessions, one per symbol.

Open a session, pick a tool, then send pointer events in pixel space to place
horizontal lines, trend lines, rays and parallel channels. Selection, dragging
and deletion follow the same pointer and key protocol as the chart UI. Every
change is cached locally and synced to the configured targets after a short
debounce. Live notifications are documented under /docs/events.`

var apiTags = []*huma.Tag{
	{Name: "Health", Description: "Liveness and stream client counts."},
	{Name: "Sessions", Description: "Open, inspect and close per-symbol drawing sessions."},
	{Name: "Viewport", Description: "Visible time and price range used to map pixels to chart coordinates."},
	{Name: "Interaction", Description: "Tool selection, pointer events and key presses."},
	{Name: "Studies", Description: "List, restyle, select and delete placed drawings."},
	{Name: "Snapshots", Description: "Archived chart renders with the study set they show."},
	{Name: "Cache", Description: "Locally cached study sets of open and closed charts."},
}

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>Chart Drawing API</title>
  <meta name="description" content="Interactive chart drawing sessions: tools, pointer events, studies, snapshots and event streams." />
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <a href="/docs/events" style="
    position: fixed;
    top: 12px;
    right: 16px;
    z-index: 9999;
    background: #161b22;
    border: 1px solid #30363d;
    border-radius: 6px;
    color: #58a6ff;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
    font-size: 12px;
    font-weight: 500;
    padding: 5px 12px;
    text-decoration: none;
  ">Event Stream Docs →</a>
  <noscript>
    <h1>Chart Drawing API</h1>
    <p>The interactive reference needs JavaScript. The raw description is at <a href="/openapi.json">/openapi.json</a>.</p>
    <ul>
      <li>Sessions: <code>/api/v1/sessions/{symbol}</code></li>
      <li>Interaction: <code>/api/v1/sessions/{symbol}/tool</code>, <code>/pointer</code>, <code>/keys</code></li>
      <li>Studies: <code>/api/v1/sessions/{symbol}/studies</code></li>
      <li>Snapshots: <code>/api/v1/snapshots</code></li>
      <li>Cache: <code>/api/v1/cache</code></li>
    </ul>
  </noscript>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

package tvsync

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgnsrekt/tv_drawings/internal/drawing"
)

const (
	codeEvalFailure    = "EVAL_FAILURE"
	codeAPIUnavailable = "API_UNAVAILABLE"
	codeSymbolMismatch = "SYMBOL_MISMATCH"
)

const jsPreamble = `
var api = window.TradingViewApi;
var chart = api && typeof api.activeChart === "function" ? api.activeChart() : null;`

// jsSymbolHelper compares a chart symbol with a subject on the part after
// the exchange prefix, case-insensitively.
const jsSymbolHelper = `
function _tail(s) { s = String(s || ""); var i = s.lastIndexOf(":"); return (i >= 0 ? s.slice(i + 1) : s).toUpperCase(); }`

type shapePoint struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

type shapeOverrides struct {
	LineColor string  `json:"linecolor"`
	LineWidth float64 `json:"linewidth"`
}

// shapeSpec is one createMultipointShape call.
type shapeSpec struct {
	Shape     string         `json:"shape"`
	Points    []shapePoint   `json:"points"`
	Overrides shapeOverrides `json:"overrides"`
}

// shapesFor converts studies into chart shapes. Horizontal lines have no
// time anchor and are pinned at now.
func shapesFor(studies []drawing.Study, now time.Time) []shapeSpec {
	out := make([]shapeSpec, 0, len(studies))
	for _, s := range studies {
		spec := shapeSpec{Overrides: shapeOverrides{LineColor: s.Color, LineWidth: s.LineWidth}}
		switch s.Type {
		case drawing.TypeHorizontalLine:
			spec.Shape = "horizontal_line"
			spec.Points = []shapePoint{{Time: now.Unix(), Price: s.Price}}
		case drawing.TypeTrendLine, drawing.TypeRay, drawing.TypeParallelChannel:
			if s.P1 == nil || s.P2 == nil {
				continue
			}
			spec.Points = []shapePoint{{Time: s.P1.Time, Price: s.P1.Price}, {Time: s.P2.Time, Price: s.P2.Price}}
			switch s.Type {
			case drawing.TypeTrendLine:
				spec.Shape = "trend_line"
			case drawing.TypeRay:
				spec.Shape = "ray"
			default:
				spec.Shape = "parallel_channel"
				spec.Points = append(spec.Points, shapePoint{Time: s.P1.Time, Price: s.P1.Price + s.ChannelOffset})
			}
		default:
			continue
		}
		out = append(out, spec)
	}
	return out
}

// jsSyncShapes removes the shapes a previous sync created for subject and
// creates the given set.
func jsSyncShapes(subject string, shapes []shapeSpec) string {
	return wrapJSEvalAsync(fmt.Sprintf(jsPreamble+jsSymbolHelper+`
var subject = %s;
var shapes = %s;
if (!chart || typeof chart.createMultipointShape !== "function" || typeof chart.removeEntity !== "function") {
  return JSON.stringify({ok:false,error_code:"`+codeAPIUnavailable+`",error_message:"shape API unavailable"});
}
var symbol = typeof chart.symbol === "function" ? String(chart.symbol() || "") : "";
if (symbol && _tail(symbol) !== _tail(subject)) {
  return JSON.stringify({ok:false,error_code:"`+codeSymbolMismatch+`",error_message:"active chart shows "+symbol});
}
var store = window.__drawingSync = window.__drawingSync || {};
var prev = store[subject] || [];
var removed = 0;
for (var i = 0; i < prev.length; i++) {
  try { chart.removeEntity(prev[i], {disableUndo:true}); removed++; } catch(_) {}
}
var ids = [];
for (var j = 0; j < shapes.length; j++) {
  var s = shapes[j];
  var id = await chart.createMultipointShape(s.points, {shape:s.shape, lock:true, disableUndo:true, overrides:s.overrides});
  if (id) ids.push(String(id));
}
store[subject] = ids;
return JSON.stringify({ok:true,data:{removed:removed,created:ids.length}});
`, jsString(subject), jsJSON(shapes)))
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func jsJSON(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func buildIIFE(async bool, body string) string {
	prefix := "(function(){\n"
	if async {
		prefix = "(async function(){\n"
	}
	return prefix + `try {
` + body + `
} catch (err) {
return JSON.stringify({ok:false,error_code:"` + codeEvalFailure + `",error_message:String(err && err.message || err)});
}
})()`
}

func wrapJSEvalAsync(body string) string { return buildIIFE(true, body) }

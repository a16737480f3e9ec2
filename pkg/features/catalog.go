package features

import (
	"time"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

const mdn = "https://developer.mozilla.org/en-US/docs/Web/"

// Builtin returns the compiled-in feature catalog.
func Builtin() Source {
	return Static(builtinCatalog...)
}

var builtinCatalog = []Record{
	// CSS properties
	{
		ID:             "grid",
		Name:           "CSS Grid",
		Status:         Widely,
		AvailableSince: date(2020, time.April, 17),
		Category:       CategoryCSS,
		MDNURL:         mdn + "CSS/CSS_grid_layout",
	},
	{
		ID:             "subgrid",
		Name:           "CSS subgrid",
		Status:         Newly,
		AvailableSince: date(2023, time.September, 15),
		Category:       CategoryCSS,
		Alternatives:   []string{"Nested grid with explicit track sizes", "display: contents on the intermediate element"},
		MigrationSteps: []string{"Wrap subgrid usage in @supports (grid-template-columns: subgrid)", "Provide explicit track sizes as fallback"},
		MDNURL:         mdn + "CSS/CSS_grid_layout/Subgrid",
	},
	{
		ID:             "gap",
		Name:           "gap (flexbox and grid)",
		Status:         Widely,
		AvailableSince: date(2023, time.October, 21),
		Category:       CategoryCSS,
		MDNURL:         mdn + "CSS/gap",
	},
	{
		ID:             "aspect-ratio",
		Name:           "aspect-ratio",
		Status:         Widely,
		AvailableSince: date(2024, time.March, 20),
		Category:       CategoryCSS,
		Alternatives:   []string{"padding-top percentage hack"},
		MDNURL:         mdn + "CSS/aspect-ratio",
	},
	{
		ID:             "container",
		Name:           "CSS container queries",
		Status:         Newly,
		AvailableSince: date(2023, time.February, 14),
		Category:       CategoryCSS,
		Alternatives:   []string{"Media queries", "ResizeObserver driven classes"},
		Polyfills:      []string{"container-query-polyfill"},
		MigrationSteps: []string{"Keep media query fallbacks for layout-critical rules", "Load container-query-polyfill for older browsers"},
		MDNURL:         mdn + "CSS/CSS_containment/Container_queries",
	},
	{
		ID:             "view-transitions",
		Name:           "View Transitions API",
		Status:         Limited,
		Category:       CategoryCSS,
		Alternatives:   []string{"CSS transitions on opacity and transform", "Web Animations API"},
		MigrationSteps: []string{"Guard document.startViewTransition with a feature check", "Fall back to an immediate DOM update"},
		MDNURL:         mdn + "API/View_Transitions_API",
	},
	{
		ID:             "color-scheme",
		Name:           "CSS color-scheme",
		Status:         Widely,
		AvailableSince: date(2022, time.July, 28),
		Category:       CategoryCSS,
		MDNURL:         mdn + "CSS/color-scheme",
	},
	{
		ID:             "anchor-positioning",
		Name:           "CSS anchor positioning",
		Status:         NotBaseline,
		Category:       CategoryCSS,
		Alternatives:   []string{"JavaScript positioning with Floating UI"},
		Polyfills:      []string{"@oddbird/css-anchor-positioning"},
		MigrationSteps: []string{"Wrap anchor rules in @supports (anchor-name: --a)", "Position with JavaScript where unsupported"},
		MDNURL:         mdn + "CSS/CSS_anchor_positioning",
	},
	{
		ID:           "field-sizing",
		Name:         "CSS field-sizing",
		Status:       NotBaseline,
		Category:     CategoryCSS,
		Alternatives: []string{"Auto-grow textarea with a small script"},
		MDNURL:       mdn + "CSS/field-sizing",
	},

	// CSS functions
	{
		ID:             "min-function",
		Name:           "CSS min()",
		Status:         Widely,
		AvailableSince: date(2020, time.July, 28),
		Category:       CategoryCSS,
		MDNURL:         mdn + "CSS/min",
	},
	{
		ID:             "max-function",
		Name:           "CSS max()",
		Status:         Widely,
		AvailableSince: date(2020, time.July, 28),
		Category:       CategoryCSS,
		MDNURL:         mdn + "CSS/max",
	},
	{
		ID:             "clamp-function",
		Name:           "CSS clamp()",
		Status:         Widely,
		AvailableSince: date(2020, time.July, 28),
		Category:       CategoryCSS,
		MDNURL:         mdn + "CSS/clamp",
	},
	{
		ID:             "var-function",
		Name:           "CSS custom properties (var())",
		Status:         Widely,
		AvailableSince: date(2017, time.April, 5),
		Category:       CategoryCSS,
		MDNURL:         mdn + "CSS/var",
	},
	{
		ID:             "color-mix-function",
		Name:           "CSS color-mix()",
		Status:         Newly,
		AvailableSince: date(2023, time.May, 9),
		Category:       CategoryCSS,
		Alternatives:   []string{"Precomputed colors", "Sass color.mix at build time"},
		MigrationSteps: []string{"Declare a static fallback color before the color-mix() declaration"},
		MDNURL:         mdn + "CSS/color_value/color-mix",
	},

	// CSS at-rules and selectors
	{
		ID:             "cascade-layers",
		Name:           "CSS cascade layers (@layer)",
		Status:         Newly,
		AvailableSince: date(2022, time.March, 14),
		Category:       CategoryCSS,
		Polyfills:      []string{"@csstools/postcss-cascade-layers"},
		MigrationSteps: []string{"Compile layers away with PostCSS for older targets"},
		MDNURL:         mdn + "CSS/@layer",
	},
	{
		ID:             "has",
		Name:           "CSS :has() selector",
		Status:         Newly,
		AvailableSince: date(2023, time.December, 19),
		Category:       CategoryCSS,
		Alternatives:   []string{"Toggle a parent class from JavaScript"},
		MigrationSteps: []string{"Wrap :has() rules in @supports selector(:has(a))"},
		MDNURL:         mdn + "CSS/:has",
	},
	{
		ID:             "registered-custom-properties",
		Name:           "CSS @property",
		Status:         Newly,
		AvailableSince: date(2024, time.July, 9),
		Category:       CategoryCSS,
		Alternatives:   []string{"Unregistered custom properties"},
		MDNURL:         mdn + "CSS/@property",
	},
	{
		ID:           "scope",
		Name:         "CSS @scope",
		Status:       Limited,
		Category:     CategoryCSS,
		Alternatives: []string{"BEM naming", "CSS modules"},
		MDNURL:       mdn + "CSS/@scope",
	},

	// JavaScript
	{
		ID:             "array-at",
		Name:           "Array.prototype.at()",
		Status:         Newly,
		AvailableSince: date(2022, time.March, 14),
		Category:       CategoryJavaScript,
		Alternatives:   []string{"arr[arr.length - 1]"},
		Polyfills:      []string{"core-js"},
		MigrationSteps: []string{"Import core-js/actual/array/at"},
		MDNURL:         mdn + "JavaScript/Reference/Global_Objects/Array/at",
	},
	{
		ID:             "structured-clone",
		Name:           "structuredClone()",
		Status:         Newly,
		AvailableSince: date(2022, time.March, 14),
		Category:       CategoryJavaScript,
		Alternatives:   []string{"JSON.parse(JSON.stringify(value))", "lodash cloneDeep"},
		Polyfills:      []string{"core-js"},
		MDNURL:         mdn + "API/structuredClone",
	},
	{
		ID:             "array-findlast",
		Name:           "Array.prototype.findLast()",
		Status:         Newly,
		AvailableSince: date(2022, time.August, 23),
		Category:       CategoryJavaScript,
		Alternatives:   []string{"[...arr].reverse().find(fn)"},
		Polyfills:      []string{"core-js"},
		MDNURL:         mdn + "JavaScript/Reference/Global_Objects/Array/findLast",
	},
	{
		ID:             "import-meta",
		Name:           "import.meta",
		Status:         Widely,
		AvailableSince: date(2020, time.May, 19),
		Category:       CategoryJavaScript,
		MDNURL:         mdn + "JavaScript/Reference/Operators/import.meta",
	},
	{
		ID:             "array-flat",
		Name:           "Array.prototype.flat() and flatMap()",
		Status:         Widely,
		AvailableSince: date(2020, time.January, 15),
		Category:       CategoryJavaScript,
		MDNURL:         mdn + "JavaScript/Reference/Global_Objects/Array/flatMap",
	},
	{
		ID:             "promise-any",
		Name:           "Promise.any()",
		Status:         Widely,
		AvailableSince: date(2023, time.March, 15),
		Category:       CategoryJavaScript,
		MDNURL:         mdn + "JavaScript/Reference/Global_Objects/Promise/any",
	},
	{
		ID:             "object-hasown",
		Name:           "Object.hasOwn()",
		Status:         Newly,
		AvailableSince: date(2022, time.March, 14),
		Category:       CategoryJavaScript,
		Alternatives:   []string{"Object.prototype.hasOwnProperty.call(obj, key)"},
		Polyfills:      []string{"core-js"},
		MDNURL:         mdn + "JavaScript/Reference/Global_Objects/Object/hasOwn",
	},
	{
		ID:             "array-fromasync",
		Name:           "Array.fromAsync()",
		Status:         Newly,
		AvailableSince: date(2024, time.January, 25),
		Category:       CategoryJavaScript,
		Alternatives:   []string{"for await...of loop pushing into an array"},
		Polyfills:      []string{"core-js"},
		MDNURL:         mdn + "JavaScript/Reference/Global_Objects/Array/fromAsync",
	},
	{
		ID:             "string-replaceall",
		Name:           "String.prototype.replaceAll()",
		Status:         Widely,
		AvailableSince: date(2023, time.February, 13),
		Category:       CategoryJavaScript,
		MDNURL:         mdn + "JavaScript/Reference/Global_Objects/String/replaceAll",
	},

	// Web APIs
	{
		ID:             "intersection-observer",
		Name:           "IntersectionObserver API",
		Status:         Widely,
		AvailableSince: date(2021, time.September, 20),
		Category:       CategoryWebAPI,
		Polyfills:      []string{"intersection-observer"},
		MDNURL:         mdn + "API/IntersectionObserver",
	},
	{
		ID:             "resize-observer",
		Name:           "ResizeObserver API",
		Status:         Widely,
		AvailableSince: date(2022, time.September, 12),
		Category:       CategoryWebAPI,
		Polyfills:      []string{"@juggle/resize-observer"},
		MDNURL:         mdn + "API/ResizeObserver",
	},
	{
		ID:             "async-clipboard",
		Name:           "Async Clipboard API",
		Status:         Newly,
		AvailableSince: date(2024, time.June, 11),
		Category:       CategoryWebAPI,
		Alternatives:   []string{"document.execCommand('copy')"},
		MigrationSteps: []string{"Check navigator.clipboard before use", "Fall back to a hidden textarea with execCommand"},
		MDNURL:         mdn + "API/Clipboard_API",
	},
	{
		ID:             "webgpu-api",
		Name:           "WebGPU API",
		Status:         Limited,
		Category:       CategoryWebAPI,
		Alternatives:   []string{"WebGL 2"},
		MigrationSteps: []string{"Feature-detect navigator.gpu", "Render with WebGL where unavailable"},
		MDNURL:         mdn + "API/WebGPU_API",
	},
	{
		ID:           "web-share-api",
		Name:         "Web Share API",
		Status:       Limited,
		Category:     CategoryWebAPI,
		Alternatives: []string{"Copy-link button"},
		MDNURL:       mdn + "API/Web_Share_API",
	},

	// HTML
	{
		ID:             "dialog",
		Name:           "<dialog>",
		Status:         Newly,
		AvailableSince: date(2022, time.March, 14),
		Category:       CategoryHTML,
		Alternatives:   []string{`<div role="dialog"> with ARIA`},
		Polyfills:      []string{"dialog-polyfill"},
		MigrationSteps: []string{"Use ARIA roles", "Add polyfill"},
		MDNURL:         mdn + "HTML/Element/dialog",
	},
	{
		ID:             "search",
		Name:           "<search>",
		Status:         Newly,
		AvailableSince: date(2023, time.October, 13),
		Category:       CategoryHTML,
		Alternatives:   []string{`<form role="search">`},
		MDNURL:         mdn + "HTML/Element/search",
	},
	{
		ID:             "popover",
		Name:           "Popover",
		Status:         Newly,
		AvailableSince: date(2024, time.April, 16),
		Category:       CategoryHTML,
		Polyfills:      []string{"@oddbird/popover-polyfill"},
		MigrationSteps: []string{"Feature-detect HTMLElement.prototype.showPopover", "Load @oddbird/popover-polyfill"},
		MDNURL:         mdn + "HTML/Global_attributes/popover",
	},
	{
		ID:             "inert",
		Name:           "inert attribute",
		Status:         Newly,
		AvailableSince: date(2023, time.April, 11),
		Category:       CategoryHTML,
		Polyfills:      []string{"wicg-inert"},
		MDNURL:         mdn + "HTML/Global_attributes/inert",
	},
	{
		ID:             "loading-lazy",
		Name:           "Lazy loading (loading=lazy)",
		Status:         Newly,
		AvailableSince: date(2023, time.March, 14),
		Category:       CategoryHTML,
		Alternatives:   []string{"IntersectionObserver based lazy loading"},
		MDNURL:         mdn + "Performance/Lazy_loading",
	},
	{
		ID:             "declarative-shadow-dom",
		Name:           "Declarative shadow DOM",
		Status:         Newly,
		AvailableSince: date(2024, time.August, 5),
		Category:       CategoryHTML,
		MigrationSteps: []string{"Attach shadow roots from script where shadowrootmode is unsupported"},
		MDNURL:         mdn + "HTML/Element/template",
	},
}

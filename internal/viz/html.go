package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate *template.Template

func init() {
	compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))
}

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force"}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// GenerateHTML generates a standalone HTML page for the graph.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}
	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}

	title := "Citation network"
	if graph.Topic != "" {
		title += ": " + graph.Topic
	}

	data := templateData{Title: title, Empty: graph.IsEmpty()}
	if !data.Empty {
		graphJSON, err := graph.ToCytoscapeJSON()
		if err != nil {
			return "", err
		}
		data.GraphJSON = template.JS(graphJSON)
		data.Layout = layoutToCytoscape(opts.Layout)
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering network page: %w", err)
	}
	return buf.String(), nil
}

// validateLayout checks if the layout option is valid.
func validateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, or grid", layout)
	}
}

type templateData struct {
	Title     string
	Empty     bool
	GraphJSON template.JS
	Layout    string
}

// layoutToCytoscape converts layout names to Cytoscape.js algorithm names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle", "grid":
		return layout
	default:
		return "cose"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f5f5;
    }
    header {
      padding: 8px 16px;
      background: white;
      border-bottom: 1px solid #ddd;
      font-weight: bold;
    }
    #cy { width: 100%; height: calc(100vh - 38px); background: white; }
    .empty-state { text-align: center; color: #666; margin-top: 30vh; }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 320px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .label { font-weight: bold; margin-bottom: 4px; }
    #tooltip .detail { color: #555; margin: 2px 0; }
  </style>
</head>
<body>
  <header>{{.Title}}</header>
{{- if .Empty}}
  <div class="empty-state">
    <h2>No papers</h2>
    <p>This run has no references to connect.</p>
  </div>
{{- else}}
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': '#4A90D9',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '10px',
              'text-valign': 'bottom',
              'text-margin-y': '5px',
              'width': 'mapData(relevance, 0, 100, 20, 50)',
              'height': 'mapData(relevance, 0, 100, 20, 50)'
            }
          },
          {
            selector: 'node[?central]',
            style: {
              'background-color': '#E8923A',
              'shape': 'diamond',
              'font-weight': 'bold'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '#95A5A6',
              'curve-style': 'bezier',
              'width': 'mapData(weight, 1, 5, 1, 6)'
            }
          },
          { selector: 'node.highlighted', style: { 'border-width': 3, 'border-color': '#ff6b6b' } },
          { selector: 'node.dimmed', style: { 'opacity': 0.3 } },
          { selector: 'edge.dimmed', style: { 'opacity': 0.2 } }
        ],
        layout: {
          name: layout,
          animate: false,
          nodeRepulsion: 8000,
          idealEdgeLength: 100,
          edgeElasticity: 100
        }
      });

      const tooltip = document.getElementById('tooltip');

      function showTooltip(evt, content) {
        tooltip.innerHTML = content;
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 53) + 'px';
      }

      function hideTooltip() {
        tooltip.style.display = 'none';
      }

      function escapeHtml(str) {
        if (!str) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      function getNodeTooltip(node) {
        const d = node.data();
        let html = '<div class="label">' + escapeHtml(d.title) + '</div>';
        if (d.authors) html += '<div class="detail">' + escapeHtml(d.authors) + '</div>';
        if (d.year) html += '<div class="detail">Year: ' + escapeHtml(d.year) + '</div>';
        html += '<div class="detail">Relevance: ' + d.relevance + '%</div>';
        html += '<div class="detail">Citations: ' + d.citations + '</div>';
        html += '<div class="detail">Linked papers: ' + d.connectionCount + '</div>';
        return html;
      }

      cy.on('mouseover', 'node', function(evt) { showTooltip(evt, getNodeTooltip(evt.target)); });
      cy.on('mouseout', 'node', hideTooltip);
      cy.on('mouseover', 'edge', function(evt) {
        showTooltip(evt, '<div class="detail">' + evt.target.data('weight') + ' shared keywords</div>');
      });
      cy.on('mouseout', 'edge', hideTooltip);

      cy.on('tap', 'node', function(evt) {
        const neighborhood = evt.target.neighborhood().add(evt.target);
        cy.elements().removeClass('highlighted dimmed');
        neighborhood.addClass('highlighted');
        cy.elements().not(neighborhood).addClass('dimmed');
      });
      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('highlighted dimmed');
        }
      });
    })();
  </script>
{{- end}}
</body>
</html>`

package projector

import "encoding/json"

// ChartDatasetLabel names the single pie dataset.
const ChartDatasetLabel = "Despesas e Receitas por Categoria"

// ChartPalette is cycled by the chart library when there are more slices.
var ChartPalette = []string{"#4caf50", "#2196f3", "#ff9800", "#f44336"}

// ChartConfig mirrors the Chart.js configuration object for the pie chart.
type ChartConfig struct {
	Type    string       `json:"type"`
	Data    ChartData    `json:"data"`
	Options ChartOptions `json:"options"`
}

type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
}

type ChartDataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
}

type ChartOptions struct {
	Responsive bool         `json:"responsive"`
	Plugins    ChartPlugins `json:"plugins"`
}

type ChartPlugins struct {
	Legend ChartLegend `json:"legend"`
}

type ChartLegend struct {
	Display  bool   `json:"display"`
	Position string `json:"position"`
}

// Chart builds the pie configuration for d.
func Chart(d Distribution) ChartConfig {
	return ChartConfig{
		Type: "pie",
		Data: ChartData{
			Labels: d.Labels(),
			Datasets: []ChartDataset{{
				Label:           ChartDatasetLabel,
				Data:            d.Values(),
				BackgroundColor: append([]string(nil), ChartPalette...),
			}},
		},
		Options: ChartOptions{
			Responsive: true,
			Plugins:    ChartPlugins{Legend: ChartLegend{Display: true, Position: "top"}},
		},
	}
}

// JSON encodes the configuration for the page script.
func (c ChartConfig) JSON() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

package mcp

func (s *Server) listTools() interface{} {
	return map[string]interface{}{
		"tools": []interface{}{
			map[string]interface{}{
				"name": "analyze_dataset",
				"description": "Analyze a tabular supply-chain dataset: infer column roles, compute demand volatility and bottleneck locations, " +
					"score quantity outliers and generate prioritized recommendations. Columns must include a timestamp, product and quantity column " +
					"(matched by name); a location column is optional.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"columns": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "string"},
							"description": "Column names in source order. Optional; defaults to the keys of the first row.",
						},
						"rows": map[string]interface{}{
							"type":        "array",
							"items":       map[string]interface{}{"type": "object"},
							"description": "Records mapping column name to value.",
						},
					},
					"required": []string{"rows"},
				},
			},
			map[string]interface{}{
				"name": "analyze_events",
				"description": "Analyze a timestamped process event log: rank steps by delay impact against the largest inter-event gap, " +
					"flag statistically anomalous delays and generate process advice. Whole-call validation: any event with a missing or " +
					"non-numeric field fails the analysis.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"events": map[string]interface{}{
							"type": "array",
							"items": map[string]interface{}{
								"type": "object",
								"properties": map[string]interface{}{
									"timestamp": map[string]interface{}{"type": "string", "description": "ISO-8601 instant, optional trailing Z"},
									"step":      map[string]interface{}{"type": "string"},
									"delay":     map[string]interface{}{"description": "Delay in hours; number or numeric string"},
								},
								"required": []string{"timestamp", "step", "delay"},
							},
						},
					},
					"required": []string{"events"},
				},
			},
			map[string]interface{}{
				"name": "analyze_kpis",
				"description": "Evaluate realtime operational KPIs (inventory turnover, fulfillment rate, order velocity) against their " +
					"thresholds. Healthy KPIs yield no recommendations.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"cost_of_goods":     map[string]interface{}{"type": "number"},
						"average_inventory": map[string]interface{}{"type": "number"},
						"fulfilled_orders":  map[string]interface{}{"type": "number"},
						"total_orders":      map[string]interface{}{"type": "number"},
						"total_lead_time":   map[string]interface{}{"type": "number"},
					},
				},
			},
			map[string]interface{}{
				"name": "analyze_text",
				"description": "Reduce text to per-dimension embedding statistics via the configured embedding collaborator. " +
					"Returns an explicitly degraded result when no embedder is configured.",
				"inputSchema": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"text": map[string]interface{}{"type": "string"},
					},
					"required": []string{"text"},
				},
			},
		},
	}
}

package support

import (
	"context"
	"fmt"
	"strings"

	"github.com/handoff-ai/relay/internal/runctx"
	"github.com/handoff-ai/relay/internal/tool"
	"github.com/handoff-ai/relay/internal/types"
)

// RegisterTools registers the support-desk tool set.
func RegisterTools(registry *tool.Registry) {
	registry.MustRegister(tool.NewFunc("fetch_customer_profile",
		"Fetch a customer profile: loyalty tier, account age, spend, and internal notes.",
		types.Object(map[string]*types.Schema{
			"customer_id": types.String("customer ID, e.g. CUST-1001"),
		}, "customer_id"),
		fetchCustomerProfile))

	registry.MustRegister(tool.NewFunc("analyze_sentiment",
		"Classify the emotional tone of a customer message (very_negative to positive).",
		types.Object(map[string]*types.Schema{
			"message": types.String("the customer's message text"),
		}, "message"),
		analyzeSentiment))

	registry.MustRegister(tool.NewFunc("lookup_order",
		"Look up full order details including items, status, and shipment info.",
		types.Object(map[string]*types.Schema{
			"order_id": types.String("order ID, e.g. ORD-2024-1001"),
		}, "order_id"),
		lookupOrder))

	registry.MustRegister(tool.NewFunc("track_shipment",
		"Track a shipment by carrier tracking number, with delay analysis.",
		types.Object(map[string]*types.Schema{
			"tracking_number": types.String("carrier tracking number, e.g. TRK-9876543210"),
		}, "tracking_number"),
		trackShipment))

	registry.MustRegister(tool.NewFunc("lookup_invoice",
		"Look up an invoice and flag duplicate or disputed charges.",
		types.Object(map[string]*types.Schema{
			"invoice_id": types.String("invoice ID, e.g. INV-7301"),
		}, "invoice_id"),
		lookupInvoice))

	registry.MustRegister(tool.NewFunc("search_knowledge_base",
		"Search support articles by keyword for troubleshooting steps.",
		types.Object(map[string]*types.Schema{
			"query": types.String("search keywords"),
		}, "query"),
		searchKnowledgeBase))

	registry.MustRegister(tool.NewFunc("open_carrier_trace",
		"Propose a carrier trace investigation for a stalled shipment.",
		types.Object(map[string]*types.Schema{
			"order_id": types.String("the affected order ID"),
			"reason":   types.String("why the trace is needed"),
		}, "order_id", "reason"),
		openCarrierTrace))

	registry.MustRegister(tool.NewFunc("draft_resolution",
		"Record the proposed resolution for the ticket (refund, replacement, escalate, inform).",
		types.Object(map[string]*types.Schema{
			"action":  types.String("one of refund, replacement, escalate, inform"),
			"summary": types.String("one-paragraph summary for the customer record"),
		}, "action", "summary"),
		draftResolution))
}

func fetchCustomerProfile(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	id, _ := args["customer_id"].(string)
	customer, ok := dataset(rc).Customer(id)
	if !ok {
		return tool.NotFound(fmt.Sprintf("customer %s not found", id))
	}
	return tool.Ok(map[string]any{
		"id":                 customer.ID,
		"name":               customer.Name,
		"tier":               customer.Tier,
		"account_age_months": customer.AccountAge,
		"total_spend":        customer.TotalSpend,
		"notes":              customer.Notes,
	})
}

func analyzeSentiment(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	message, _ := args["message"].(string)
	lower := strings.ToLower(message)

	sentiment := "neutral"
	switch {
	case strings.Contains(lower, "unacceptable") || strings.Contains(lower, "furious") || strings.Contains(lower, "worst"):
		sentiment = "very_negative"
	case strings.Contains(lower, "need") || strings.Contains(lower, "no movement") || strings.Contains(lower, "still waiting"):
		sentiment = "negative"
	case strings.Contains(lower, "thanks") || strings.Contains(lower, "great"):
		sentiment = "positive"
	}

	return tool.Ok(map[string]any{"sentiment": sentiment})
}

func lookupOrder(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	id, _ := args["order_id"].(string)
	order, ok := dataset(rc).Order(id)
	if !ok {
		return tool.NotFound(fmt.Sprintf("order %s not found in the system", id))
	}
	return tool.Ok(map[string]any{
		"id":              order.ID,
		"customer_id":     order.CustomerID,
		"status":          order.Status,
		"items":           order.Items,
		"total":           order.Total,
		"tracking_number": order.TrackingNumber,
		"shipment_status": order.ShipmentStatus,
	})
}

func trackShipment(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	trackingNumber, _ := args["tracking_number"].(string)
	for _, order := range dataset(rc).Orders {
		if order.TrackingNumber != trackingNumber || trackingNumber == "" {
			continue
		}
		out := map[string]any{
			"tracking_number": trackingNumber,
			"order_id":        order.ID,
			"status":          order.ShipmentStatus,
		}
		if order.ShipmentStatus == "in_transit" {
			out["delay_analysis"] = "no carrier scan in over 48h; eligible for carrier trace"
		}
		return tool.Ok(out)
	}
	return tool.NotFound(fmt.Sprintf("no shipment with tracking number %s", trackingNumber))
}

func lookupInvoice(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	id, _ := args["invoice_id"].(string)
	invoice, ok := dataset(rc).Invoice(id)
	if !ok {
		return tool.NotFound(fmt.Sprintf("invoice %s not found", id))
	}
	return tool.Ok(map[string]any{
		"id":          invoice.ID,
		"customer_id": invoice.CustomerID,
		"amount":      invoice.Amount,
		"status":      invoice.Status,
		"note":        invoice.Note,
	})
}

func searchKnowledgeBase(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	query, _ := args["query"].(string)
	terms := strings.Fields(strings.ToLower(query))

	var hits []map[string]any
	for _, article := range dataset(rc).Articles {
		haystack := strings.ToLower(article.Title + " " + strings.Join(article.Tags, " "))
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				hits = append(hits, map[string]any{
					"id":      article.ID,
					"title":   article.Title,
					"summary": article.Summary,
				})
				break
			}
		}
	}
	return tool.Ok(map[string]any{"articles": hits, "count": len(hits)})
}

func openCarrierTrace(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	orderID, _ := args["order_id"].(string)
	reason, _ := args["reason"].(string)
	if _, ok := dataset(rc).Order(orderID); !ok {
		return tool.NotFound(fmt.Sprintf("order %s not found", orderID))
	}

	action := rc.AppendAction(ctx, "open_carrier_trace",
		fmt.Sprintf("carrier trace proposed for %s", orderID),
		map[string]any{"order_id": orderID, "reason": reason})
	return tool.Ok(map[string]any{
		"trace_id": action.ID.String(),
		"order_id": orderID,
		"status":   "proposed",
	})
}

func draftResolution(ctx context.Context, rc *runctx.RunContext, args map[string]any) tool.Result {
	actionKind, _ := args["action"].(string)
	summary, _ := args["summary"].(string)

	switch actionKind {
	case "refund", "replacement", "escalate", "inform":
	default:
		return tool.InvalidArgs(fmt.Sprintf("unknown resolution action %q", actionKind))
	}

	action := rc.AppendAction(ctx, "draft_resolution", summary,
		map[string]any{"action": actionKind})
	return tool.Ok(map[string]any{
		"resolution_id": action.ID.String(),
		"action":        actionKind,
	})
}

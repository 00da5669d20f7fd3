// Package printing renders customer-facing price quotes to PDF.
//
// The quote is laid out as an HTML page with html/template and printed by a
// headless Chrome instance driven over the DevTools protocol (chromedp).
// Rendering a quote needs no database access: the caller passes a fully
// computed catalog.QuoteDocument.
//
//	renderer, err := NewChromedpRenderer(cfg.Printing, logger)
//	if err != nil {
//	    return err
//	}
//	defer renderer.Close()
//
//	pdf, err := renderer.RenderQuotePDF(ctx, doc)
package printing

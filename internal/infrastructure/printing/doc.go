// Package printing turns orders into printable invoices. Invoices are
// rendered from an html/template and converted to PDF by headless Chrome
// through chromedp. When Chrome is not available the HTML is served as is.
package printing

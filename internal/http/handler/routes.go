package handler

import (
	"github.com/gofiber/fiber/v2"

	"ocrapi/internal/service"
)

// RegisterRoutes attaches the HTTP surface to the Fiber app. Handlers stay
// thin; lifecycle rules live in the service layer.
func RegisterRoutes(app *fiber.App, store Pinger,
	lifecycle service.LifecycleService,
	completion service.CompletionService,
	results service.ResultService,
) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(store))
	app.Get("/healthz", LivenessProbe())

	app.Post("/documents/:id", CreateDocument(lifecycle))
	app.Put("/documents/:id", UpdateDocument(lifecycle))
	app.Head("/documents/:id", HeadDocument(lifecycle))
	app.Get("/documents/:id", GetDocument(lifecycle))
	app.Get("/documents/:id/metadata", GetDocumentMetadata(lifecycle))
	app.Get("/documents/:id/status", DocumentStatus(lifecycle))

	app.Get("/results/:id", FetchResult(results))
	app.Get("/uploads/:id/url", PresignUpload(lifecycle))

	app.Post("/notifications", Notification(completion))
}

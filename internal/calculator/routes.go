package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Post("/evaluate", h.Evaluate)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.DeleteSession)
				r.Get("/ws", h.Stream)

				r.Post("/keys", h.PressKeys)
				r.Post("/digit/{digit}", h.EnterDigit)
				r.Post("/decimal", h.EnterDecimalPoint)
				r.Post("/sign", h.ToggleSign)
				r.Post("/percent", h.ApplyPercentage)
				r.Post("/clear", h.Reset)
				r.Post("/operator/{op}", h.ApplyOperator)
			})
		})
	})
}

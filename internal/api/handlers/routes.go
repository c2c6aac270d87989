package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/elevatecapital/fundtracker/internal/models"
)

func (h *FundHandler) pageRoutes() map[string]route {
	return map[string]route{
		"dashboard": {fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			return h.svc.Fund.Dashboard(ctx)
		}},
		"portfolio": {fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			return h.svc.Fund.Portfolio(ctx)
		}},
		"members": {fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			return h.svc.Fund.Members(ctx)
		}},
		"portfolioHistory": {fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			return h.svc.Portfolio.History(ctx)
		}},
		"myContribution": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			return h.svc.Fund.MyContribution(ctx, queryEmail(c))
		}},
		"userDetails": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			return h.svc.Fund.UserDetails(ctx, queryEmail(c))
		}},
		"getNotifications": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			return h.svc.Notifications.ForUser(ctx, queryEmail(c))
		}},
		"proofs": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			return h.svc.Proofs.List(ctx, queryEmail(c), h.svc.Auth.IsAdmin(c.Query("adminEmail")))
		}},
		"getPendingUsers": {admin: true, fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			return h.svc.Auth.PendingUsers(ctx)
		}},
		"getNotificationsAdmin": {admin: true, fn: h.allNotifications},
		"adminDashboard": {admin: true, fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			data, err := h.svc.Fund.AdminDashboard(ctx)
			if err != nil {
				return nil, err
			}
			if h.svc.Quotes != nil {
				status := h.svc.Quotes.Status(ctx)
				data.Quotes = &status
			}
			return data, nil
		}},
	}
}

func (h *FundHandler) allNotifications(ctx context.Context, _ *gin.Context) (interface{}, error) {
	return h.svc.Notifications.All(ctx)
}

func (h *FundHandler) actionRoutes() map[string]route {
	return map[string]route{
		"signIn": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.SignInRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Auth.SignIn(ctx, req)
		}},
		"requestSignUp": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.SignUpRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Auth.RequestSignUp(ctx, req)
		}},
		"updateUserProfile": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.UpdateProfileRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Auth.UpdateProfile(ctx, req)
		}},
		"uploadFile": {fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.UploadFileRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Proofs.Upload(ctx, req)
		}},

		// Admin actions
		"approveUser": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.EmailRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Auth.ApproveUser(ctx, req.Email)
		}},
		"rejectUser": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.EmailRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Auth.RejectUser(ctx, req.Email)
		}},
		"addUser": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.AddUserRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Auth.AddUser(ctx, req)
		}},
		"addNotification": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.AddNotificationRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Notifications.Add(ctx, req)
		}},
		"toggleNotificationStatus": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.ToggleNotificationRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Notifications.Toggle(ctx, req)
		}},
		"deleteNotification": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.NotificationIDRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Notifications.Delete(ctx, req.ID)
		}},
		"getNotificationsAdmin": {admin: true, fn: h.allNotifications},
		"updateDashboardMetric": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.UpdateMetricRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Fund.UpdateDashboardMetric(ctx, req)
		}},
		"addPortfolioHolding": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.AddHoldingRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Portfolio.AddHolding(ctx, req)
		}},
		"updatePortfolioHolding": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.UpdateHoldingRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Portfolio.UpdateHolding(ctx, req)
		}},
		"deletePortfolioHolding": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.DeleteHoldingRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Portfolio.DeleteHolding(ctx, req)
		}},
		"addUserContribution": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.AddContributionRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Fund.AddContribution(ctx, req)
		}},
		"addPortfolioHistory": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.HistoryPointInput](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Portfolio.AddHistoryPoint(ctx, req)
		}},
		"updatePortfolioHistory": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.UpdateHistoryRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Portfolio.UpdateHistoryPoint(ctx, req)
		}},
		"deletePortfolioHistory": {admin: true, fn: func(ctx context.Context, c *gin.Context) (interface{}, error) {
			req, err := bind[models.HistoryIDRequest](c)
			if err != nil {
				return nil, err
			}
			return h.svc.Portfolio.DeleteHistoryPoint(ctx, req.ID)
		}},
		"recalculateMetrics": {admin: true, fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			return h.svc.Fund.Recalculate(ctx)
		}},
		"refreshQuotes": {admin: true, fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			if h.svc.Quotes == nil {
				return nil, validation("Live quotes are disabled.")
			}
			updated, err := h.svc.Quotes.RunOnce(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "Live quotes refreshed.", "updated": updated}, nil
		}},
		"takeSnapshot": {admin: true, fn: func(ctx context.Context, _ *gin.Context) (interface{}, error) {
			point, err := h.svc.Snapshots.TakeSnapshot(ctx)
			if err != nil {
				return nil, err
			}
			return gin.H{"message": "Snapshot recorded.", "value": point.Value}, nil
		}},
	}
}

package tlog

func AuditIntegrationConnected(tenantID int64, integrationID int64, platform string, platformUserID string) {
	Audit.Info().
		Str("event", "integration_connected").
		Int64("tenant_id", tenantID).
		Int64("integration_id", integrationID).
		Str("platform", platform).
		Str("platform_user_id", platformUserID).
		Send()
}

func AuditIntegrationDisconnected(tenantID int64, integrationID int64, platform string) {
	Audit.Info().
		Str("event", "integration_disconnected").
		Int64("tenant_id", tenantID).
		Int64("integration_id", integrationID).
		Str("platform", platform).
		Send()
}

func AuditContentPublished(tenantID int64, integrationID int64, contentID int64, postID string) {
	Audit.Info().
		Str("event", "content_published").
		Str("result", "success").
		Int64("tenant_id", tenantID).
		Int64("integration_id", integrationID).
		Int64("content_id", contentID).
		Str("post_id", postID).
		Send()
}

func AuditContentPublishFailed(tenantID int64, integrationID int64, contentID int64, err error) {
	Audit.Warn().
		Str("event", "content_published").
		Str("result", "failure").
		Int64("tenant_id", tenantID).
		Int64("integration_id", integrationID).
		Int64("content_id", contentID).
		Err(err).
		Send()
}

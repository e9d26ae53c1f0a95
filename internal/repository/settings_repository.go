package repository

import (
	"context"

	"rms-backend/internal/db"
	"rms-backend/internal/domain"
)

type SettingsRepository struct {
	DB *db.Postgres
}

func (r SettingsRepository) Get(ctx context.Context) (*domain.ShopSettings, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT business_name, business_address, business_phone, receipt_footer, currency_code, warranty_note, updated_at
		FROM shop_settings
		WHERE id=1
	`)
	var s domain.ShopSettings
	if err := row.Scan(
		&s.BusinessName, &s.BusinessAddress, &s.BusinessPhone, &s.ReceiptFooter, &s.CurrencyCode, &s.WarrantyNote, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r SettingsRepository) Save(ctx context.Context, s domain.ShopSettings) (*domain.ShopSettings, error) {
	err := r.DB.Pool.QueryRow(ctx, `
		INSERT INTO shop_settings (id, business_name, business_address, business_phone, receipt_footer, currency_code, warranty_note, updated_at)
		VALUES (1,$1,$2,$3,$4,$5,$6, now())
		ON CONFLICT (id) DO UPDATE SET
			business_name=EXCLUDED.business_name,
			business_address=EXCLUDED.business_address,
			business_phone=EXCLUDED.business_phone,
			receipt_footer=EXCLUDED.receipt_footer,
			currency_code=EXCLUDED.currency_code,
			warranty_note=EXCLUDED.warranty_note,
			updated_at=now()
		RETURNING business_name, business_address, business_phone, receipt_footer, currency_code, warranty_note, updated_at
	`, s.BusinessName, s.BusinessAddress, s.BusinessPhone, s.ReceiptFooter, s.CurrencyCode, s.WarrantyNote).Scan(
		&s.BusinessName, &s.BusinessAddress, &s.BusinessPhone, &s.ReceiptFooter, &s.CurrencyCode, &s.WarrantyNote, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

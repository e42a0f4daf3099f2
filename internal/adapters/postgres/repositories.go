package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/domain"
	"github.com/srirevanthnu18/SKYLINEAUTHV2/internal/ports"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repositories struct {
	Accounts     ports.AccountRepository
	Applications ports.ApplicationRepository
	Packages     ports.PackageRepository
	Keys         ports.KeyRepository
	Vars         ports.VarRepository
	Outbox       ports.OutboxRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Accounts:     &accountRepository{db: db},
		Applications: &applicationRepository{db: db},
		Packages:     &packageRepository{db: db},
		Keys:         &keyRepository{db: db},
		Vars:         &varRepository{db: db},
		Outbox:       &outboxRepository{db: db},
	}
}

type accountRepository struct {
	db *gorm.DB
}

func (r *accountRepository) Create(ctx context.Context, params ports.AccountCreateParams) (domain.OperatorAccount, error) {
	rec := operatorAccountModel{
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		Email:        params.Email,
		Role:         string(params.Role),
		Credits:      params.Credits,
		CreatedBy:    params.CreatedBy,
		IsActive:     true,
		CreatedAt:    params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.OperatorAccount{}, domain.ErrConflict
		}
		return domain.OperatorAccount{}, err
	}
	return toDomainAccount(rec, nil), nil
}

func (r *accountRepository) GetByID(ctx context.Context, accountID uuid.UUID) (domain.OperatorAccount, error) {
	var rec operatorAccountModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.OperatorAccount{}, domain.ErrNotFound
		}
		return domain.OperatorAccount{}, err
	}
	assigned, err := r.assignedPackages(ctx, rec.AccountID)
	if err != nil {
		return domain.OperatorAccount{}, err
	}
	return toDomainAccount(rec, assigned), nil
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (domain.OperatorAccount, error) {
	var rec operatorAccountModel
	if err := r.db.WithContext(ctx).Where("username = ?", username).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.OperatorAccount{}, domain.ErrNotFound
		}
		return domain.OperatorAccount{}, err
	}
	assigned, err := r.assignedPackages(ctx, rec.AccountID)
	if err != nil {
		return domain.OperatorAccount{}, err
	}
	return toDomainAccount(rec, assigned), nil
}

func (r *accountRepository) assignedPackages(ctx context.Context, accountID uuid.UUID) ([]uuid.UUID, error) {
	var rows []resellerPackageModel
	if err := r.db.WithContext(ctx).Where("account_id = ?", accountID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.PackageID)
	}
	return ids, nil
}

func (r *accountRepository) List(ctx context.Context, role domain.Role) ([]domain.OperatorAccount, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if role != "" {
		query = query.Where("role = ?", string(role))
	}
	var rows []operatorAccountModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.OperatorAccount, 0, len(rows))
	for _, row := range rows {
		assigned, err := r.assignedPackages(ctx, row.AccountID)
		if err != nil {
			return nil, err
		}
		result = append(result, toDomainAccount(row, assigned))
	}
	return result, nil
}

func (r *accountRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&operatorAccountModel{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *accountRepository) SetActive(ctx context.Context, accountID uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&operatorAccountModel{}).
		Where("account_id = ?", accountID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accountRepository) RecordLogin(ctx context.Context, accountID uuid.UUID, ip string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&operatorAccountModel{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"last_login_ip": nullableString(strings.TrimSpace(ip)),
			"last_login_at": at,
		}).Error
}

func (r *accountRepository) Delete(ctx context.Context, accountID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("account_id = ?", accountID).Delete(&resellerPackageModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("account_id = ?", accountID).Delete(&operatorAccountModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *accountRepository) AddCredits(ctx context.Context, accountID uuid.UUID, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&operatorAccountModel{}).
		Where("account_id = ?", accountID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DebitCredits performs the balance check and the decrement in a single
// conditional UPDATE. Zero rows affected means either the account is gone
// or the balance fell short; the follow-up read tells the two apart.
func (r *accountRepository) DebitCredits(ctx context.Context, accountID uuid.UUID, amount int64) error {
	res := r.db.WithContext(ctx).
		Model(&operatorAccountModel{}).
		Where("account_id = ?", accountID).
		Where("credits >= ?", amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var exists int64
		if err := r.db.WithContext(ctx).Model(&operatorAccountModel{}).Where("account_id = ?", accountID).Count(&exists).Error; err != nil {
			return err
		}
		if exists == 0 {
			return domain.ErrNotFound
		}
		return domain.ErrInsufficientCredits
	}
	return nil
}

func (r *accountRepository) AssignPackage(ctx context.Context, accountID, packageID uuid.UUID) error {
	rec := resellerPackageModel{
		AccountID:  accountID,
		PackageID:  packageID,
		AssignedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec).Error
}

func (r *accountRepository) UnassignPackage(ctx context.Context, accountID, packageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("account_id = ? AND package_id = ?", accountID, packageID).
		Delete(&resellerPackageModel{}).Error
}

type applicationRepository struct {
	db *gorm.DB
}

func (r *applicationRepository) Create(ctx context.Context, params ports.ApplicationCreateParams) (domain.Application, error) {
	rec := applicationModel{
		Name:      params.Name,
		Secret:    params.Secret,
		OwnerID:   params.OwnerID,
		Version:   params.Version,
		IsActive:  true,
		CreatedAt: params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Application{}, domain.ErrConflict
		}
		return domain.Application{}, err
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) GetByID(ctx context.Context, appID uuid.UUID) (domain.Application, error) {
	var rec applicationModel
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, err
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) GetBySecret(ctx context.Context, secret string) (domain.Application, error) {
	var rec applicationModel
	if err := r.db.WithContext(ctx).Where("secret = ?", secret).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, err
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) GetByNameOwner(ctx context.Context, name string, ownerID uuid.UUID) (domain.Application, error) {
	var rec applicationModel
	if err := r.db.WithContext(ctx).Where("name = ? AND owner_id = ?", name, ownerID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Application{}, domain.ErrNotFound
		}
		return domain.Application{}, err
	}
	return toDomainApplication(rec), nil
}

func (r *applicationRepository) List(ctx context.Context, ownerID *uuid.UUID) ([]domain.Application, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if ownerID != nil {
		query = query.Where("owner_id = ?", *ownerID)
	}
	var rows []applicationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainApplication(row))
	}
	return result, nil
}

func (r *applicationRepository) SetActive(ctx context.Context, appID uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&applicationModel{}).
		Where("app_id = ?", appID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the application row and everything scoped under it in one
// transaction so a half-deleted tenant can never be observed.
func (r *applicationRepository) Delete(ctx context.Context, appID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).Model(&packageModel{}).Select("package_id").Where("app_id = ?", appID),
		).Delete(&resellerPackageModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&endUserKeyModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&packageModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("app_id = ?", appID).Delete(&appVarModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("app_id = ?", appID).Delete(&applicationModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

type packageRepository struct {
	db *gorm.DB
}

func (r *packageRepository) Create(ctx context.Context, params ports.PackageCreateParams) (domain.Package, error) {
	rec := packageModel{
		Name:         params.Name,
		DurationDays: params.DurationDays,
		AppID:        params.AppID,
		CreatedBy:    params.CreatedBy,
		CreatedAt:    params.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.Package{}, domain.ErrConflict
		}
		return domain.Package{}, err
	}
	return toDomainPackage(rec), nil
}

func (r *packageRepository) GetByID(ctx context.Context, packageID uuid.UUID) (domain.Package, error) {
	var rec packageModel
	if err := r.db.WithContext(ctx).Where("package_id = ?", packageID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Package{}, domain.ErrNotFound
		}
		return domain.Package{}, err
	}
	return toDomainPackage(rec), nil
}

func (r *packageRepository) List(ctx context.Context, appID uuid.UUID) ([]domain.Package, error) {
	var rows []packageModel
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.Package, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainPackage(row))
	}
	return result, nil
}

func (r *packageRepository) Delete(ctx context.Context, packageID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("package_id = ?", packageID).Delete(&resellerPackageModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("package_id = ?", packageID).Delete(&packageModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

type keyRepository struct {
	db *gorm.DB
}

func (r *keyRepository) Insert(ctx context.Context, key domain.EndUserKey) error {
	rec := endUserKeyModel{
		KeyID:        key.KeyID,
		Key:          key.Key,
		Username:     key.Username,
		PasswordHash: key.PasswordHash,
		AppID:        key.AppID,
		PackageID:    key.PackageID,
		CreatedBy:    key.CreatedBy,
		HardwareLock: key.Binding.LockEnabled,
		HardwareID:   key.Binding.ID,
		Expiry:       key.Expiry,
		IsActive:     key.IsActive,
		CreatedAt:    key.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrKeyExists
		}
		return err
	}
	return nil
}

func (r *keyRepository) GetByID(ctx context.Context, keyID uuid.UUID) (domain.EndUserKey, error) {
	var rec endUserKeyModel
	if err := r.db.WithContext(ctx).Where("key_id = ?", keyID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EndUserKey{}, domain.ErrNotFound
		}
		return domain.EndUserKey{}, err
	}
	return toDomainKey(rec), nil
}

func (r *keyRepository) GetByKeyString(ctx context.Context, key string) (domain.EndUserKey, error) {
	var rec endUserKeyModel
	if err := r.db.WithContext(ctx).Where("key = ?", key).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EndUserKey{}, domain.ErrNotFound
		}
		return domain.EndUserKey{}, err
	}
	return toDomainKey(rec), nil
}

func (r *keyRepository) GetByLogin(ctx context.Context, appID uuid.UUID, login string) (domain.EndUserKey, error) {
	var rec endUserKeyModel
	if err := r.db.WithContext(ctx).
		Where("app_id = ?", appID).
		Where("key = ? OR username = ?", login, login).
		Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.EndUserKey{}, domain.ErrNotFound
		}
		return domain.EndUserKey{}, err
	}
	return toDomainKey(rec), nil
}

func applyKeyFilter(query *gorm.DB, filter ports.KeyFilter) *gorm.DB {
	if filter.AppID != nil {
		query = query.Where("app_id = ?", *filter.AppID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	return query
}

func (r *keyRepository) List(ctx context.Context, filter ports.KeyFilter) ([]domain.EndUserKey, error) {
	var rows []endUserKeyModel
	query := applyKeyFilter(r.db.WithContext(ctx), filter).Order("created_at DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]domain.EndUserKey, 0, len(rows))
	for _, row := range rows {
		result = append(result, toDomainKey(row))
	}
	return result, nil
}

func (r *keyRepository) Count(ctx context.Context, filter ports.KeyFilter) (int64, error) {
	var n int64
	query := applyKeyFilter(r.db.WithContext(ctx).Model(&endUserKeyModel{}), filter)
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *keyRepository) CountRedeemed(ctx context.Context, appID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("app_id = ?", appID).
		Where("username <> ''").
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// UsernameTaken checks both columns of the per-application namespace so a
// chosen username can never collide with an existing key string.
func (r *keyRepository) UsernameTaken(ctx context.Context, appID uuid.UUID, username string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("app_id = ?", appID).
		Where("username = ? OR key = ?", username, username).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Claim binds credentials to an unredeemed key. The empty-username guard in
// the WHERE clause makes concurrent claims race at the store: exactly one
// caller sees RowsAffected == 1.
func (r *keyRepository) Claim(ctx context.Context, keyID uuid.UUID, username, passwordHash, hardwareID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("key_id = ?", keyID).
		Where("username = ''").
		Where("redeemed_at IS NULL").
		Updates(map[string]any{
			"username":      username,
			"password_hash": passwordHash,
			"hardware_id":   hardwareID,
			"redeemed_at":   at,
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, domain.ErrUsernameTaken
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// BindHardware captures a machine identifier only while the slot is empty.
func (r *keyRepository) BindHardware(ctx context.Context, keyID uuid.UUID, hardwareID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("key_id = ?", keyID).
		Where("hardware_id = ''").
		Update("hardware_id", hardwareID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *keyRepository) ResetHardware(ctx context.Context, keyID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("key_id = ?", keyID).
		Update("hardware_id", "")
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *keyRepository) SetExpiry(ctx context.Context, keyID uuid.UUID, expiry time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("key_id = ?", keyID).
		Update("expiry", expiry)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *keyRepository) SetActive(ctx context.Context, keyID uuid.UUID, active bool) error {
	res := r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("key_id = ?", keyID).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *keyRepository) RecordLogin(ctx context.Context, keyID uuid.UUID, ip string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&endUserKeyModel{}).
		Where("key_id = ?", keyID).
		Updates(map[string]any{
			"last_login_ip": nullableString(strings.TrimSpace(ip)),
			"last_login_at": at,
		}).Error
}

func (r *keyRepository) Delete(ctx context.Context, keyID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("key_id = ?", keyID).Delete(&endUserKeyModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type varRepository struct {
	db *gorm.DB
}

func (r *varRepository) Upsert(ctx context.Context, appID uuid.UUID, varID, data string) error {
	rec := appVarModel{
		AppID:     appID,
		VarID:     varID,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "app_id"}, {Name: "var_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
}

func (r *varRepository) Get(ctx context.Context, appID uuid.UUID, varID string) (string, error) {
	var rec appVarModel
	if err := r.db.WithContext(ctx).Where("app_id = ? AND var_id = ?", appID, varID).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return rec.Data, nil
}

func (r *varRepository) List(ctx context.Context, appID uuid.UUID) (map[string]string, error) {
	var rows []appVarModel
	if err := r.db.WithContext(ctx).Where("app_id = ?", appID).Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[string]string, len(rows))
	for _, row := range rows {
		result[row.VarID] = row.Data
	}
	return result, nil
}

func (r *varRepository) Delete(ctx context.Context, appID uuid.UUID, varID string) error {
	res := r.db.WithContext(ctx).Where("app_id = ? AND var_id = ?", appID, varID).Delete(&appVarModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type outboxRepository struct {
	db *gorm.DB
}

func (r *outboxRepository) Enqueue(ctx context.Context, event ports.OutboxEvent) error {
	payload := string(event.Payload)
	if payload == "" {
		payload = "{}"
	}
	rec := auditOutboxModel{
		OutboxID:     event.EventID,
		EventType:    event.EventType,
		PartitionKey: event.PartitionKey,
		Payload:      payload,
		CreatedAt:    event.OccurredAt,
	}
	return r.db.WithContext(ctx).Create(&rec).Error
}

// ClaimUnpublished stamps a batch of deliverable records with a claim token
// inside one transaction. Expired claims from crashed workers become
// claimable again once claim_until passes.
func (r *outboxRepository) ClaimUnpublished(ctx context.Context, limit int, claimToken string, claimUntil time.Time) ([]ports.OutboxRecord, error) {
	now := time.Now().UTC()
	var claimed []auditOutboxModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []auditOutboxModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("published_at IS NULL").
			Where("dead_lettered_at IS NULL").
			Where("claim_until IS NULL OR claim_until < ?", now).
			Order("created_at ASC").
			Limit(limit).
			Find(&candidates).Error; err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.OutboxID)
		}
		if err := tx.Model(&auditOutboxModel{}).
			Where("outbox_id IN ?", ids).
			Updates(map[string]any{
				"claim_token": claimToken,
				"claim_until": claimUntil,
			}).Error; err != nil {
			return err
		}
		claimed = candidates
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := make([]ports.OutboxRecord, 0, len(claimed))
	for _, row := range claimed {
		result = append(result, ports.OutboxRecord{
			OutboxID:       row.OutboxID,
			EventType:      row.EventType,
			PartitionKey:   row.PartitionKey,
			Payload:        []byte(row.Payload),
			RetryCount:     row.RetryCount,
			LastError:      row.LastError,
			CreatedAt:      row.CreatedAt,
			PublishedAt:    row.PublishedAt,
			LastErrorAt:    row.LastErrorAt,
			ClaimToken:     &claimToken,
			ClaimUntil:     &claimUntil,
			DeadLetteredAt: row.DeadLetteredAt,
		})
	}
	return result, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, outboxID uuid.UUID, claimToken string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&auditOutboxModel{}).
		Where("outbox_id = ? AND claim_token = ?", outboxID, claimToken).
		Update("published_at", at).Error
}

func (r *outboxRepository) MarkFailed(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&auditOutboxModel{}).
		Where("outbox_id = ? AND claim_token = ?", outboxID, claimToken).
		Updates(map[string]any{
			"retry_count":   gorm.Expr("retry_count + 1"),
			"last_error":    errMsg,
			"last_error_at": at,
			"claim_token":   nil,
			"claim_until":   nil,
		}).Error
}

func (r *outboxRepository) MarkDeadLettered(ctx context.Context, outboxID uuid.UUID, claimToken, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&auditOutboxModel{}).
		Where("outbox_id = ? AND claim_token = ?", outboxID, claimToken).
		Updates(map[string]any{
			"dead_lettered_at": at,
			"last_error":       errMsg,
			"last_error_at":    at,
		}).Error
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

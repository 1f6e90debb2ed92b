package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoLogPrefix = "db:repository"

// Repository provides database access for registry operations.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// =========================================================================
// CONTRACT OPERATIONS
// =========================================================================

const contractColumns = `id, app, name, description, tags, status, revision,
	        created, created_by, modified, modified_by`

// GetContract finds a contract by app and name.
func (r *Repository) GetContract(ctx context.Context, app, name string) (*Contract, error) {
	slog.Debug(fmt.Sprintf("%s - GetContract app=%s name=%s", repoLogPrefix, app, name))

	row := r.pool.QueryRow(ctx,
		`SELECT `+contractColumns+`
		 FROM contracts
		 WHERE app = $1 AND name = $2
		 LIMIT 1`, app, name)

	return scanContract(row)
}

// GetContractByID finds a contract by ID.
func (r *Repository) GetContractByID(ctx context.Context, id string) (*Contract, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contractColumns+`
		 FROM contracts
		 WHERE id = $1
		 LIMIT 1`, id)

	return scanContract(row)
}

// UpsertContract creates or updates a contract.
func (r *Repository) UpsertContract(ctx context.Context, params UpsertContractParams) (*Contract, error) {
	slog.Info(fmt.Sprintf("%s - UpsertContract app=%s name=%s", repoLogPrefix, params.App, params.Name))

	now := time.Now().UTC()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO contracts (app, name, description, tags, created_by, modified_by, created, modified)
		 VALUES ($1, $2, $3, COALESCE($4, '{}'), $5, $5, $6, $6)
		 ON CONFLICT (app, name) DO UPDATE SET
		   description = COALESCE($3, contracts.description),
		   tags = COALESCE($4, contracts.tags),
		   revision = contracts.revision + 1,
		   modified = $6,
		   modified_by = $5
		 RETURNING `+contractColumns,
		params.App, params.Name, params.Description, params.Tags, params.UserID, now)

	return scanContract(row)
}

// UpsertContractParams holds parameters for UpsertContract.
type UpsertContractParams struct {
	App         string
	Name        string
	Description *string
	Tags        []string
	UserID      string
}

// ListContracts lists contracts with optional filters.
func (r *Repository) ListContracts(ctx context.Context, params ListContractsParams) ([]Contract, int, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := `SELECT ` + contractColumns + ` FROM contracts WHERE 1=1`
	countQuery := `SELECT COUNT(*)::int FROM contracts WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if params.App != "" {
		clause := fmt.Sprintf(` AND app = $%d`, argIdx)
		query += clause
		countQuery += clause
		args = append(args, params.App)
		argIdx++
	}
	if params.Status != "" && params.Status != "all" {
		clause := fmt.Sprintf(` AND status = $%d`, argIdx)
		query += clause
		countQuery += clause
		args = append(args, params.Status)
		argIdx++
	}
	if params.Query != "" {
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR description ILIKE $%d)`, argIdx, argIdx)
		query += clause
		countQuery += clause
		args = append(args, "%"+params.Query+"%")
		argIdx++
	}
	if len(params.Tags) > 0 {
		clause := fmt.Sprintf(` AND tags && $%d`, argIdx)
		query += clause
		countQuery += clause
		args = append(args, params.Tags)
		argIdx++
	}

	var total int
	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%s - ListContracts count failed: %w", repoLogPrefix, err)
	}

	query += ` ORDER BY modified DESC`
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s - ListContracts query failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var contracts []Contract
	for rows.Next() {
		c, err := scanContractFromRows(rows)
		if err != nil {
			return nil, 0, err
		}
		contracts = append(contracts, *c)
	}

	return contracts, total, nil
}

// ListContractsParams holds parameters for ListContracts.
type ListContractsParams struct {
	App    string
	Tags   []string
	Query  string
	Status string
	Page   int
	Limit  int
}

// IncrementRevision bumps a contract's revision counter and returns the new value.
func (r *Repository) IncrementRevision(ctx context.Context, contractID string) (int, error) {
	var revision int
	err := r.pool.QueryRow(ctx,
		`UPDATE contracts SET revision = revision + 1, modified = $2
		 WHERE id = $1
		 RETURNING revision`, contractID, time.Now().UTC()).Scan(&revision)
	if err != nil {
		return 0, fmt.Errorf("%s - IncrementRevision failed: %w", repoLogPrefix, err)
	}
	return revision, nil
}

// =========================================================================
// VERSION OPERATIONS
// =========================================================================

const versionColumns = `id, contract_id, major, minor, patch, prerelease,
	        status, deprecation_reason, deprecated_at, disabled_at, changelog,
	        created, created_by, modified, modified_by`

// GetVersions returns all interface versions for a contract, newest first.
func (r *Repository) GetVersions(ctx context.Context, contractID string) ([]InterfaceVersion, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+versionColumns+`
		 FROM interface_versions
		 WHERE contract_id = $1
		 ORDER BY major DESC, minor DESC, patch DESC`, contractID)
	if err != nil {
		return nil, fmt.Errorf("%s - GetVersions failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	return scanVersions(rows)
}

// GetVersionsByContractIDs returns all interface versions for the given
// contract IDs, keyed by contract_id.
func (r *Repository) GetVersionsByContractIDs(ctx context.Context, contractIDs []string) (map[string][]InterfaceVersion, error) {
	if len(contractIDs) == 0 {
		return map[string][]InterfaceVersion{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+versionColumns+`
		 FROM interface_versions
		 WHERE contract_id = ANY($1)
		 ORDER BY contract_id, major DESC, minor DESC, patch DESC`, contractIDs)
	if err != nil {
		return nil, fmt.Errorf("%s - GetVersionsByContractIDs failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	result := make(map[string][]InterfaceVersion)
	for rows.Next() {
		v, err := scanVersionFromRows(rows)
		if err != nil {
			return nil, err
		}
		result[v.ContractID] = append(result[v.ContractID], *v)
	}
	return result, nil
}

// GetVersion finds a specific interface version.
func (r *Repository) GetVersion(ctx context.Context, params GetVersionParams) (*InterfaceVersion, error) {
	query := `SELECT ` + versionColumns + `
	          FROM interface_versions
	          WHERE contract_id = $1 AND major = $2 AND minor = $3 AND patch = $4`
	args := []interface{}{params.ContractID, params.Major, params.Minor, params.Patch}

	if params.Prerelease != nil {
		query += ` AND prerelease = $5`
		args = append(args, *params.Prerelease)
	} else {
		query += ` AND prerelease IS NULL`
	}
	query += ` LIMIT 1`

	row := r.pool.QueryRow(ctx, query, args...)
	return scanVersion(row)
}

// GetVersionParams holds parameters for GetVersion.
type GetVersionParams struct {
	ContractID string
	Major      int
	Minor      int
	Patch      int
	Prerelease *string
}

// UpsertVersion creates or updates an interface version.
func (r *Repository) UpsertVersion(ctx context.Context, params UpsertVersionParams) (*InterfaceVersion, error) {
	slog.Info(fmt.Sprintf("%s - UpsertVersion contractID=%s %d.%d.%d",
		repoLogPrefix, params.ContractID, params.Major, params.Minor, params.Patch))

	now := time.Now().UTC()

	row := r.pool.QueryRow(ctx,
		`INSERT INTO interface_versions
		   (contract_id, major, minor, patch, prerelease, changelog, created_by, modified_by, created, modified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, $8)
		 ON CONFLICT (contract_id, major, minor, patch, prerelease) DO UPDATE SET
		   changelog = COALESCE($6, interface_versions.changelog),
		   modified = $8,
		   modified_by = $7
		 RETURNING `+versionColumns,
		params.ContractID, params.Major, params.Minor, params.Patch,
		params.Prerelease, params.Changelog, params.UserID, now)

	return scanVersion(row)
}

// UpsertVersionParams holds parameters for UpsertVersion.
type UpsertVersionParams struct {
	ContractID string
	Major      int
	Minor      int
	Patch      int
	Prerelease *string
	Changelog  *string
	UserID     string
}

// UpdateVersionStatus updates the status of an interface version.
func (r *Repository) UpdateVersionStatus(ctx context.Context, params UpdateVersionStatusParams) (*InterfaceVersion, error) {
	now := time.Now().UTC()

	query := `UPDATE interface_versions SET status = $1, modified = $2, modified_by = $3`
	args := []interface{}{params.Status, now, params.UserID}
	argIdx := 4

	switch params.Status {
	case "deprecated":
		query += fmt.Sprintf(`, deprecation_reason = $%d, deprecated_at = $%d`, argIdx, argIdx+1)
		args = append(args, params.Reason, now)
		argIdx += 2
	case "disabled":
		query += fmt.Sprintf(`, deprecation_reason = $%d, disabled_at = $%d`, argIdx, argIdx+1)
		args = append(args, params.Reason, now)
		argIdx += 2
	}

	query += fmt.Sprintf(` WHERE id = $%d`, argIdx)
	args = append(args, params.VersionID)

	query += ` RETURNING ` + versionColumns

	row := r.pool.QueryRow(ctx, query, args...)
	return scanVersion(row)
}

// UpdateVersionStatusParams holds parameters for UpdateVersionStatus.
type UpdateVersionStatusParams struct {
	VersionID string
	Status    string // "active", "deprecated", "disabled"
	Reason    *string
	UserID    string
}

// =========================================================================
// FUNCTION OPERATIONS
// =========================================================================

const functionColumns = `id, version_id, name, signature, selector, inputs,
	        outputs, mutability, description, created, modified`

// GetFunctions returns all function descriptors for an interface version,
// ordered by canonical signature.
func (r *Repository) GetFunctions(ctx context.Context, versionID string) ([]InterfaceFunction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+functionColumns+`
		 FROM interface_functions
		 WHERE version_id = $1
		 ORDER BY signature ASC`, versionID)
	if err != nil {
		return nil, fmt.Errorf("%s - GetFunctions failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	var functions []InterfaceFunction
	for rows.Next() {
		var f InterfaceFunction
		if err := rows.Scan(
			&f.ID, &f.VersionID, &f.Name, &f.Signature, &f.Selector,
			&f.Inputs, &f.Outputs, &f.Mutability, &f.Description,
			&f.Created, &f.Modified,
		); err != nil {
			return nil, fmt.Errorf("%s - GetFunctions scan failed: %w", repoLogPrefix, err)
		}
		functions = append(functions, f)
	}
	return functions, nil
}

// InsertFunction adds a function descriptor to an interface version.
func (r *Repository) InsertFunction(ctx context.Context, params InsertFunctionParams) (*InterfaceFunction, error) {
	now := time.Now().UTC()

	inputs := params.Inputs
	if inputs == nil {
		inputs = []byte("[]")
	}
	outputs := params.Outputs
	if outputs == nil {
		outputs = []byte("[]")
	}
	mutability := params.Mutability
	if mutability == "" {
		mutability = "nonpayable"
	}

	var f InterfaceFunction
	err := r.pool.QueryRow(ctx,
		`INSERT INTO interface_functions
		   (version_id, name, signature, selector, inputs, outputs, mutability, description, created, modified)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING `+functionColumns,
		params.VersionID, params.Name, params.Signature, params.Selector,
		inputs, outputs, mutability, params.Description, now,
	).Scan(
		&f.ID, &f.VersionID, &f.Name, &f.Signature, &f.Selector,
		&f.Inputs, &f.Outputs, &f.Mutability, &f.Description,
		&f.Created, &f.Modified,
	)
	if err != nil {
		return nil, fmt.Errorf("%s - InsertFunction failed: %w", repoLogPrefix, err)
	}
	return &f, nil
}

// InsertFunctionParams holds parameters for InsertFunction.
type InsertFunctionParams struct {
	VersionID   string
	Name        string
	Signature   string
	Selector    string
	Inputs      []byte
	Outputs     []byte
	Mutability  string
	Description *string
}

// DeleteFunctions deletes all function descriptors for an interface version.
func (r *Repository) DeleteFunctions(ctx context.Context, versionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM interface_functions WHERE version_id = $1`, versionID)
	return err
}

// =========================================================================
// DEFAULT (ACTIVE MAJOR) OPERATIONS
// =========================================================================

const defaultColumns = `id, contract_id, default_major, env, created, created_by, modified, modified_by`

// GetDefault returns the active major for a contract in an environment.
func (r *Repository) GetDefault(ctx context.Context, contractID, env string) (*InterfaceDefault, error) {
	var d InterfaceDefault
	err := r.pool.QueryRow(ctx,
		`SELECT `+defaultColumns+`
		 FROM interface_defaults
		 WHERE contract_id = $1 AND env = $2
		 LIMIT 1`, contractID, env,
	).Scan(
		&d.ID, &d.ContractID, &d.DefaultMajor, &d.Env,
		&d.Created, &d.CreatedBy, &d.Modified, &d.ModifiedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - GetDefault failed: %w", repoLogPrefix, err)
	}
	return &d, nil
}

// GetDefaultsBatch returns the active major per contract for the given env,
// keyed by contract_id.
func (r *Repository) GetDefaultsBatch(ctx context.Context, contractIDs []string, env string) (map[string]*InterfaceDefault, error) {
	if len(contractIDs) == 0 {
		return map[string]*InterfaceDefault{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+defaultColumns+`
		 FROM interface_defaults
		 WHERE contract_id = ANY($1) AND env = $2`, contractIDs, env)
	if err != nil {
		return nil, fmt.Errorf("%s - GetDefaultsBatch failed: %w", repoLogPrefix, err)
	}
	defer rows.Close()

	result := make(map[string]*InterfaceDefault)
	for rows.Next() {
		var d InterfaceDefault
		if err := rows.Scan(
			&d.ID, &d.ContractID, &d.DefaultMajor, &d.Env,
			&d.Created, &d.CreatedBy, &d.Modified, &d.ModifiedBy,
		); err != nil {
			return nil, fmt.Errorf("%s - GetDefaultsBatch scan failed: %w", repoLogPrefix, err)
		}
		result[d.ContractID] = &d
	}
	return result, nil
}

// SetDefault sets the active major for a contract in an environment.
func (r *Repository) SetDefault(ctx context.Context, params SetDefaultParams) (*InterfaceDefault, error) {
	now := time.Now().UTC()

	var d InterfaceDefault
	err := r.pool.QueryRow(ctx,
		`INSERT INTO interface_defaults (contract_id, default_major, env, created_by, modified_by, created, modified)
		 VALUES ($1, $2, $3, $4, $4, $5, $5)
		 ON CONFLICT (contract_id, env) DO UPDATE SET
		   default_major = $2,
		   modified = $5,
		   modified_by = $4
		 RETURNING `+defaultColumns,
		params.ContractID, params.Major, params.Env, params.UserID, now,
	).Scan(
		&d.ID, &d.ContractID, &d.DefaultMajor, &d.Env,
		&d.Created, &d.CreatedBy, &d.Modified, &d.ModifiedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("%s - SetDefault failed: %w", repoLogPrefix, err)
	}
	return &d, nil
}

// SetDefaultParams holds parameters for SetDefault.
type SetDefaultParams struct {
	ContractID string
	Major      int
	Env        string
	UserID     string
}

// =========================================================================
// SCAN HELPERS
// =========================================================================

func scanContract(row pgx.Row) (*Contract, error) {
	var c Contract
	err := row.Scan(
		&c.ID, &c.App, &c.Name, &c.Description, &c.Tags, &c.Status,
		&c.Revision, &c.Created, &c.CreatedBy, &c.Modified, &c.ModifiedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - scan contract failed: %w", repoLogPrefix, err)
	}
	return &c, nil
}

func scanContractFromRows(rows pgx.Rows) (*Contract, error) {
	var c Contract
	if err := rows.Scan(
		&c.ID, &c.App, &c.Name, &c.Description, &c.Tags, &c.Status,
		&c.Revision, &c.Created, &c.CreatedBy, &c.Modified, &c.ModifiedBy,
	); err != nil {
		return nil, fmt.Errorf("%s - scan contract failed: %w", repoLogPrefix, err)
	}
	return &c, nil
}

func scanVersion(row pgx.Row) (*InterfaceVersion, error) {
	var v InterfaceVersion
	err := row.Scan(
		&v.ID, &v.ContractID, &v.Major, &v.Minor, &v.Patch, &v.Prerelease,
		&v.Status, &v.DeprecationReason, &v.DeprecatedAt, &v.DisabledAt,
		&v.Changelog, &v.Created, &v.CreatedBy, &v.Modified, &v.ModifiedBy,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - scan version failed: %w", repoLogPrefix, err)
	}
	return &v, nil
}

func scanVersionFromRows(rows pgx.Rows) (*InterfaceVersion, error) {
	var v InterfaceVersion
	if err := rows.Scan(
		&v.ID, &v.ContractID, &v.Major, &v.Minor, &v.Patch, &v.Prerelease,
		&v.Status, &v.DeprecationReason, &v.DeprecatedAt, &v.DisabledAt,
		&v.Changelog, &v.Created, &v.CreatedBy, &v.Modified, &v.ModifiedBy,
	); err != nil {
		return nil, fmt.Errorf("%s - scan version failed: %w", repoLogPrefix, err)
	}
	return &v, nil
}

func scanVersions(rows pgx.Rows) ([]InterfaceVersion, error) {
	var versions []InterfaceVersion
	for rows.Next() {
		v, err := scanVersionFromRows(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, *v)
	}
	return versions, nil
}

package remoteit

import (
	"context"
	"errors"
)

// NoVariables is the variables type of operations that take none.
type NoVariables struct{}

// FileIDVariables identifies a file.
type FileIDVariables struct {
	FileID string `json:"fileId"`
}

// FileVersionIDVariables identifies a file version.
type FileVersionIDVariables struct {
	FileVersionID string `json:"fileVersionId"`
}

// JobIDVariables identifies a job.
type JobIDVariables struct {
	JobID string `json:"jobId"`
}

// Argument is a name/value pair passed to a job's script.
type Argument struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// StartJobInput are the variables of StartJob.
type StartJobInput struct {
	FileID    string     `json:"fileId"`
	DeviceIDs []string   `json:"deviceIds"`
	Arguments []Argument `json:"arguments,omitempty"`
}

// GetJobsOptions filters GetJobs. Empty strings, nil slices and nil
// pointers are not sent; a non-nil Limit is sent even when zero.
type GetJobsOptions struct {
	OrgID    string      `json:"orgId,omitempty"`
	Limit    *int        `json:"limit,omitempty"`
	JobIDs   []string    `json:"jobIds,omitempty"`
	Statuses []JobStatus `json:"statuses,omitempty"`
}

// GetDevicesOptions pages GetDevices. Nil Limit and Offset are not sent.
type GetDevicesOptions struct {
	OrgID  string `json:"orgId,omitempty"`
	Limit  *int   `json:"limit,omitempty"`
	Offset *int   `json:"offset,omitempty"`
}

// Int returns a pointer to v, for the optional paging fields.
func Int(v int) *int {
	return &v
}

// OrgVariables optionally selects an organization. Empty means the caller's
// own account.
type OrgVariables struct {
	OrgID string `json:"orgId,omitempty"`
}

var (
	GetFilesOp = Operation[NoVariables, GetFilesData]{
		Name: "GetFiles",
		Kind: KindQuery,
		Document: `query GetFiles {
  files {
    id
    name
    shortDesc
    longDesc
    executable
    created
    updated
    owner {
      id
      email
    }
    versions {
      items {
        id
        version
        created
        arguments {
          name
          desc
          argumentType
          options
        }
      }
    }
  }
}`,
	}

	DeleteFileOp = Operation[FileIDVariables, DeleteFileData]{
		Name: "DeleteFile",
		Kind: KindMutation,
		Document: `mutation DeleteFile($fileId: String!) {
  deleteFile(fileId: $fileId)
}`,
	}

	DeleteFileVersionOp = Operation[FileVersionIDVariables, DeleteFileVersionData]{
		Name: "DeleteFileVersion",
		Kind: KindMutation,
		Document: `mutation DeleteFileVersion($fileVersionId: String!) {
  deleteFileVersion(fileVersionId: $fileVersionId)
}`,
	}

	StartJobOp = Operation[StartJobInput, StartJobData]{
		Name: "StartJob",
		Kind: KindMutation,
		Document: `mutation StartJob($fileId: String!, $deviceIds: [String!]!, $arguments: [ArgumentInput!]) {
  startJob(fileId: $fileId, deviceIds: $deviceIds, arguments: $arguments)
}`,
	}

	CancelJobOp = Operation[JobIDVariables, CancelJobData]{
		Name: "CancelJob",
		Kind: KindMutation,
		Document: `mutation CancelJob($jobId: String!) {
  cancelJob(jobId: $jobId)
}`,
	}

	GetJobsOp = Operation[GetJobsOptions, LoginData]{
		Name: "GetJobs",
		Kind: KindQuery,
		Document: `query GetJobs($orgId: String, $limit: Int, $jobIds: [String!], $statuses: [JobStatusEnum!]) {
  login {
    account(id: $orgId) {
      jobs(size: $limit, ids: $jobIds, statuses: $statuses) {
        hasMore
        total
        items {
          id
          status
          created
          updated
          user {
            id
            email
          }
          file {
            id
            name
          }
          jobDevices {
            items {
              id
              status
              created
              updated
              device {
                id
                name
              }
            }
          }
        }
      }
    }
  }
}`,
	}

	GetDevicesOp = Operation[GetDevicesOptions, LoginData]{
		Name: "GetDevices",
		Kind: KindQuery,
		Document: `query GetDevices($orgId: String, $limit: Int, $offset: Int) {
  login {
    account(id: $orgId) {
      devices(size: $limit, from: $offset) {
        total
        hasMore
        items {
          id
          name
          hardwareId
          state
          created
          lastReported
          owner {
            id
            email
          }
          services {
            id
            name
            state
          }
        }
      }
    }
  }
}`,
	}

	GetDevicesCSVOp = Operation[OrgVariables, LoginData]{
		Name: "GetDevicesCSV",
		Kind: KindQuery,
		Document: `query GetDevicesCSV($orgId: String) {
  login {
    account(id: $orgId) {
      devicesCSV
    }
  }
}`,
	}

	GetApplicationTypesOp = Operation[NoVariables, GetApplicationTypesData]{
		Name: "GetApplicationTypes",
		Kind: KindQuery,
		Document: `query GetApplicationTypes {
  applicationTypes {
    id
    name
    description
    port
    protocol
    proxy
  }
}`,
	}

	GetOwnedOrganizationOp = Operation[NoVariables, LoginData]{
		Name: "GetOwnedOrganization",
		Kind: KindQuery,
		Document: `query GetOwnedOrganization {
  login {
    id
    email
    organization {
      id
      name
      domain
      created
      account {
        id
        email
      }
    }
  }
}`,
	}

	GetOrganizationSelfMembershipOp = Operation[NoVariables, LoginData]{
		Name: "GetOrganizationSelfMembership",
		Kind: KindQuery,
		Document: `query GetOrganizationSelfMembership {
  login {
    id
    email
    membership {
      created
      role
      license
      organization {
        id
        name
        domain
        created
      }
    }
  }
}`,
	}
)

// Catalog lists every GraphQL operation the client can send.
func Catalog() []Descriptor {
	return []Descriptor{
		GetFilesOp.Descriptor(),
		DeleteFileOp.Descriptor(),
		DeleteFileVersionOp.Descriptor(),
		StartJobOp.Descriptor(),
		CancelJobOp.Descriptor(),
		GetJobsOp.Descriptor(),
		GetDevicesOp.Descriptor(),
		GetDevicesCSVOp.Descriptor(),
		GetApplicationTypesOp.Descriptor(),
		GetOwnedOrganizationOp.Descriptor(),
		GetOrganizationSelfMembershipOp.Descriptor(),
	}
}

// Lookup returns the catalog entry named name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Catalog() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

var (
	errEmptyFileID        = errors.New("file id is required")
	errEmptyFileVersionID = errors.New("file version id is required")
	errEmptyJobID         = errors.New("job id is required")
	errNoDevices          = errors.New("at least one device id is required")
)

// data unwraps the typed data of resp, keeping partial data next to an
// APIError.
func data[R any](resp *Response[R], err error) (*R, error) {
	if resp == nil {
		return nil, err
	}
	return &resp.Data, err
}

// GetFiles lists the files of the account.
func (c *Client) GetFiles(ctx context.Context) (*GetFilesData, error) {
	resp, err := Execute(ctx, c, GetFilesOp, NoVariables{})
	return data(resp, err)
}

// DeleteFile deletes a file and all of its versions.
func (c *Client) DeleteFile(ctx context.Context, fileID string) (*DeleteFileData, error) {
	if fileID == "" {
		return nil, errEmptyFileID
	}
	resp, err := Execute(ctx, c, DeleteFileOp, FileIDVariables{FileID: fileID})
	return data(resp, err)
}

// DeleteFileVersion deletes a single version of a file.
func (c *Client) DeleteFileVersion(ctx context.Context, fileVersionID string) (*DeleteFileVersionData, error) {
	if fileVersionID == "" {
		return nil, errEmptyFileVersionID
	}
	resp, err := Execute(ctx, c, DeleteFileVersionOp, FileVersionIDVariables{FileVersionID: fileVersionID})
	return data(resp, err)
}

// StartJob runs a file on the given devices.
func (c *Client) StartJob(ctx context.Context, in StartJobInput) (*StartJobData, error) {
	if in.FileID == "" {
		return nil, errEmptyFileID
	}
	if len(in.DeviceIDs) == 0 {
		return nil, errNoDevices
	}
	resp, err := Execute(ctx, c, StartJobOp, in)
	return data(resp, err)
}

// CancelJob cancels a running or waiting job.
func (c *Client) CancelJob(ctx context.Context, jobID string) (*CancelJobData, error) {
	if jobID == "" {
		return nil, errEmptyJobID
	}
	resp, err := Execute(ctx, c, CancelJobOp, JobIDVariables{JobID: jobID})
	return data(resp, err)
}

// GetJobs lists jobs, optionally filtered by organization, id and status.
func (c *Client) GetJobs(ctx context.Context, opts GetJobsOptions) (*LoginData, error) {
	resp, err := Execute(ctx, c, GetJobsOp, opts)
	return data(resp, err)
}

// GetDevices lists one page of devices.
func (c *Client) GetDevices(ctx context.Context, opts GetDevicesOptions) (*LoginData, error) {
	resp, err := Execute(ctx, c, GetDevicesOp, opts)
	return data(resp, err)
}

// GetDevicesCSV returns a download link for the device list as CSV.
func (c *Client) GetDevicesCSV(ctx context.Context, orgID string) (*LoginData, error) {
	resp, err := Execute(ctx, c, GetDevicesCSVOp, OrgVariables{OrgID: orgID})
	return data(resp, err)
}

// GetApplicationTypes lists the service types known to remote.it.
func (c *Client) GetApplicationTypes(ctx context.Context) (*GetApplicationTypesData, error) {
	resp, err := Execute(ctx, c, GetApplicationTypesOp, NoVariables{})
	return data(resp, err)
}

// GetOwnedOrganization returns the organization owned by the caller, if any.
func (c *Client) GetOwnedOrganization(ctx context.Context) (*LoginData, error) {
	resp, err := Execute(ctx, c, GetOwnedOrganizationOp, NoVariables{})
	return data(resp, err)
}

// GetOrganizationSelfMembership lists the organizations the caller belongs to.
func (c *Client) GetOrganizationSelfMembership(ctx context.Context) (*LoginData, error) {
	resp, err := Execute(ctx, c, GetOrganizationSelfMembershipOp, NoVariables{})
	return data(resp, err)
}

package remoteit

import "time"

// JobStatus is the lifecycle state of a job or of a job on one device.
type JobStatus string

const (
	JobStatusWaiting   JobStatus = "WAITING"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSuccess   JobStatus = "SUCCESS"
	JobStatusFailed    JobStatus = "FAILED"
	JobStatusCancelled JobStatus = "CANCELLED"
	JobStatusReady     JobStatus = "READY"
)

// JobStatuses lists every JobStatus in lifecycle order.
var JobStatuses = []JobStatus{
	JobStatusWaiting,
	JobStatusRunning,
	JobStatusSuccess,
	JobStatusFailed,
	JobStatusCancelled,
	JobStatusReady,
}

// ParseJobStatus returns the JobStatus named by s.
func ParseJobStatus(s string) (JobStatus, bool) {
	for _, st := range JobStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// User identifies an account owner.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// FileArgument describes one argument a script accepts.
type FileArgument struct {
	Name         string   `json:"name"`
	Desc         string   `json:"desc,omitempty"`
	ArgumentType string   `json:"argumentType"`
	Options      []string `json:"options,omitempty"`
}

// FileVersion is one uploaded revision of a file.
type FileVersion struct {
	ID        string         `json:"id"`
	Version   int            `json:"version"`
	Created   time.Time      `json:"created"`
	Arguments []FileArgument `json:"arguments"`
}

// FileVersionList is a page of file versions.
type FileVersionList struct {
	Items []FileVersion `json:"items"`
}

// File is a script or asset stored in the account.
type File struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	ShortDesc  string          `json:"shortDesc,omitempty"`
	LongDesc   string          `json:"longDesc,omitempty"`
	Executable bool            `json:"executable"`
	Created    time.Time       `json:"created"`
	Updated    time.Time       `json:"updated"`
	Owner      User            `json:"owner"`
	Versions   FileVersionList `json:"versions"`
}

// GetFilesData is the data of the GetFiles query.
type GetFilesData struct {
	Files []File `json:"files"`
}

// DeleteFileData is the data of the DeleteFile mutation.
type DeleteFileData struct {
	DeleteFile bool `json:"deleteFile"`
}

// DeleteFileVersionData is the data of the DeleteFileVersion mutation.
type DeleteFileVersionData struct {
	DeleteFileVersion bool `json:"deleteFileVersion"`
}

// StartJobData is the data of the StartJob mutation; it holds the new job id.
type StartJobData struct {
	StartJob string `json:"startJob"`
}

// CancelJobData is the data of the CancelJob mutation.
type CancelJobData struct {
	CancelJob string `json:"cancelJob"`
}

// DeviceRef is the short form of a device embedded in other objects.
type DeviceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// JobDevice is the execution of a job on one device.
type JobDevice struct {
	ID      string    `json:"id"`
	Status  JobStatus `json:"status"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	Device  DeviceRef `json:"device"`
}

// JobDeviceList is a page of job devices.
type JobDeviceList struct {
	Items []JobDevice `json:"items"`
}

// JobFile is the file a job runs.
type JobFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Job is a script run across one or more devices.
type Job struct {
	ID         string        `json:"id"`
	Status     JobStatus     `json:"status"`
	Created    time.Time     `json:"created"`
	Updated    time.Time     `json:"updated"`
	User       User          `json:"user"`
	File       *JobFile      `json:"file"`
	JobDevices JobDeviceList `json:"jobDevices"`
}

// JobList is a page of jobs.
type JobList struct {
	HasMore bool  `json:"hasMore"`
	Total   int   `json:"total"`
	Items   []Job `json:"items"`
}

// Service is a remote.it service hosted on a device.
type Service struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Device is a registered device.
type Device struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	HardwareID   string    `json:"hardwareId,omitempty"`
	State        string    `json:"state"`
	Created      time.Time `json:"created"`
	LastReported time.Time `json:"lastReported"`
	Owner        User      `json:"owner"`
	Services     []Service `json:"services"`
}

// DeviceList is a page of devices.
type DeviceList struct {
	Total   int      `json:"total"`
	HasMore bool     `json:"hasMore"`
	Items   []Device `json:"items"`
}

// Account is the account view queried under login. Only the field selected
// by the operation is populated.
type Account struct {
	Jobs       *JobList    `json:"jobs,omitempty"`
	Devices    *DeviceList `json:"devices,omitempty"`
	DevicesCSV string      `json:"devicesCSV,omitempty"`
}

// Organization is a remote.it organization.
type Organization struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Domain  string    `json:"domain,omitempty"`
	Created time.Time `json:"created"`
	Owner   *User     `json:"account,omitempty"`
}

// Membership is the caller's membership in an organization.
type Membership struct {
	Created      time.Time    `json:"created"`
	Role         string       `json:"role"`
	License      string       `json:"license,omitempty"`
	Organization Organization `json:"organization"`
}

// Login is the authenticated user's view. Only the fields selected by the
// operation are populated.
type Login struct {
	ID           string        `json:"id,omitempty"`
	Email        string        `json:"email,omitempty"`
	Account      *Account      `json:"account,omitempty"`
	Organization *Organization `json:"organization,omitempty"`
	Membership   []Membership  `json:"membership,omitempty"`
}

// LoginData is the data of every query rooted at login.
type LoginData struct {
	Login Login `json:"login"`
}

// Jobs returns the job page of a GetJobs result.
func (d *LoginData) Jobs() JobList {
	if d.Login.Account == nil || d.Login.Account.Jobs == nil {
		return JobList{}
	}
	return *d.Login.Account.Jobs
}

// Devices returns the device page of a GetDevices result.
func (d *LoginData) Devices() DeviceList {
	if d.Login.Account == nil || d.Login.Account.Devices == nil {
		return DeviceList{}
	}
	return *d.Login.Account.Devices
}

// DevicesCSV returns the download link of a GetDevicesCSV result.
func (d *LoginData) DevicesCSV() string {
	if d.Login.Account == nil {
		return ""
	}
	return d.Login.Account.DevicesCSV
}

// ApplicationType is a kind of service, such as SSH or HTTP.
type ApplicationType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Port        int    `json:"port"`
	Protocol    string `json:"protocol"`
	Proxy       bool   `json:"proxy"`
}

// GetApplicationTypesData is the data of the GetApplicationTypes query.
type GetApplicationTypesData struct {
	ApplicationTypes []ApplicationType `json:"applicationTypes"`
}

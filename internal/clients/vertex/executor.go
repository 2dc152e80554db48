package vertex

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/gcp"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/envutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

// SubmitSpec carries everything the training container needs: where the
// dataset lives, where artifacts go, and the media-mix column groups.
type SubmitSpec struct {
	DisplayName string
	DatasetURI  string
	ResultDir   string
	BucketName  string
	Params      domain.TrainingParams
}

// TrainingExecutor is the remote compute boundary. The job id it hands back
// is the short custom-job id (last segment of the resource name); that id is
// the registry's primary key.
type TrainingExecutor interface {
	Submit(ctx context.Context, spec SubmitSpec) (*domain.TrainingJobHandle, error)
	GetJob(ctx context.Context, jobID string) (*domain.TrainingJobHandle, error)
}

type vertexExecutor struct {
	log       *logger.Logger
	client    *aiplatform.JobClient
	projectID string
	location  string
	imageURI  string
	machine   string
	gpuCount  int32
	timeout   time.Duration
}

func NewTrainingExecutor(ctx context.Context, log *logger.Logger) (TrainingExecutor, error) {
	serviceLog := log.With("service", "VertexTrainingExecutor")

	projectID := envutil.Get("VERTEX_PROJECT_ID", "insightsmix")
	location := envutil.Get("VERTEX_LOCATION", "us-central1")
	imageURI := envutil.Get("TRAINING_IMAGE_URI",
		"us-central1-docker.pkg.dev/insightsmix/mmm-training/mmm")

	opts := gcp.ClientOptionsFromEnv()
	opts = append(opts, option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location)))
	client, err := aiplatform.NewJobClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vertex job client: %w", err)
	}

	return &vertexExecutor{
		log:       serviceLog,
		client:    client,
		projectID: projectID,
		location:  location,
		imageURI:  imageURI,
		machine:   envutil.Get("TRAINING_MACHINE_TYPE", "n1-standard-16"),
		gpuCount:  int32(envutil.Int("TRAINING_GPU_COUNT", 2)),
		timeout:   envutil.Duration("VERTEX_CALL_TIMEOUT", 60*time.Second),
	}, nil
}

func (e *vertexExecutor) Submit(ctx context.Context, spec SubmitSpec) (*domain.TrainingJobHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	args, err := containerArgs(e.projectID, spec)
	if err != nil {
		return nil, err
	}

	req := &aiplatformpb.CreateCustomJobRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s", e.projectID, e.location),
		CustomJob: &aiplatformpb.CustomJob{
			DisplayName: spec.DisplayName,
			JobSpec: &aiplatformpb.CustomJobSpec{
				WorkerPoolSpecs: []*aiplatformpb.WorkerPoolSpec{
					{
						MachineSpec: &aiplatformpb.MachineSpec{
							MachineType:      e.machine,
							AcceleratorType:  aiplatformpb.AcceleratorType_NVIDIA_TESLA_T4,
							AcceleratorCount: e.gpuCount,
						},
						ReplicaCount: 1,
						Task: &aiplatformpb.WorkerPoolSpec_ContainerSpec{
							ContainerSpec: &aiplatformpb.ContainerSpec{
								ImageUri: e.imageURI,
								Args:     args,
							},
						},
					},
				},
				BaseOutputDirectory: &aiplatformpb.GcsDestination{
					OutputUriPrefix: fmt.Sprintf("gs://%s", spec.BucketName),
				},
			},
		},
	}

	job, err := e.client.CreateCustomJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create custom job: %w", err)
	}

	e.log.Info("Submitted training job", "resource", job.GetName(), "display_name", job.GetDisplayName())
	return handleFromJob(job), nil
}

func (e *vertexExecutor) GetJob(ctx context.Context, jobID string) (*domain.TrainingJobHandle, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	name := fmt.Sprintf("projects/%s/locations/%s/customJobs/%s", e.projectID, e.location, jobID)
	job, err := e.client.GetCustomJob(ctx, &aiplatformpb.GetCustomJobRequest{Name: name})
	if status.Code(err) == codes.NotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get custom job %s: %w", jobID, err)
	}
	return handleFromJob(job), nil
}

func handleFromJob(job *aiplatformpb.CustomJob) *domain.TrainingJobHandle {
	h := &domain.TrainingJobHandle{
		JobID:       shortJobID(job.GetName()),
		DisplayName: job.GetDisplayName(),
		State:       job.GetState().String(),
	}
	if ts := job.GetCreateTime(); ts != nil {
		t := ts.AsTime()
		h.CreateTime = &t
	}
	if ts := job.GetStartTime(); ts != nil {
		t := ts.AsTime()
		h.StartTime = &t
	}
	if ts := job.GetEndTime(); ts != nil {
		t := ts.AsTime()
		h.EndTime = &t
	}
	if job.GetError() != nil {
		h.ErrorMessage = job.GetError().GetMessage()
	}
	return h
}

// The resource name is projects/.../locations/.../customJobs/<id>; only the
// trailing id is stored and exposed.
func shortJobID(resourceName string) string {
	parts := strings.Split(resourceName, "/")
	return parts[len(parts)-1]
}

func containerArgs(projectID string, spec SubmitSpec) ([]string, error) {
	mediaToChannel := map[string]string{}
	for i, m := range spec.Params.Media {
		mediaToChannel[m] = fmt.Sprintf("Channel_%d", i)
	}
	spendToChannel := map[string]string{}
	for i, m := range spec.Params.MediaSpend {
		spendToChannel[m] = fmt.Sprintf("Channel_%d", i)
	}
	mediaJSON, err := json.Marshal(mediaToChannel)
	if err != nil {
		return nil, fmt.Errorf("marshal media channel map: %w", err)
	}
	spendJSON, err := json.Marshal(spendToChannel)
	if err != nil {
		return nil, fmt.Errorf("marshal media spend channel map: %w", err)
	}

	return []string{
		"--project_id", projectID,
		"--bucket_name", spec.BucketName,
		"--data_path", spec.DatasetURI,
		"--result_dir", spec.ResultDir,
		"--output_path", "mmm/output",
		"--time", strings.Join(spec.Params.Time, ","),
		"--geo", strings.Join(spec.Params.Geo, ","),
		"--controls", strings.Join(spec.Params.Controls, ","),
		"--population", strings.Join(spec.Params.Population, ","),
		"--kpi", strings.Join(spec.Params.KPI, ","),
		"--revenue_per_kpi", strings.Join(spec.Params.RevenuePerKPI, ","),
		"--media", strings.Join(spec.Params.Media, ","),
		"--media_spend", strings.Join(spec.Params.MediaSpend, ","),
		"--correct_media_to_channel", string(mediaJSON),
		"--correct_media_spend_to_channel", string(spendJSON),
	}, nil
}

//go:build windows

package webgpu

// WGSL compute shaders for the point cloud kernels.
// Using string constants instead of embed for simplicity.
//
// Binding convention shared with dispatch(): input buffers first, then the
// output buffer, then the uniform parameter block.

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// fpsShader runs furthest point sampling with one workgroup per batch
// element. Threads hold strided partitions of the points; each round folds
// the distance to the last selection and reduces an argmax in workgroup
// memory. Selected points get a -1 sentinel distance so they are never
// chosen again.
const fpsShader = `
@group(0) @binding(0) var<storage, read> xyz: array<f32>;
@group(0) @binding(1) var<storage, read_write> dist: array<f32>;
@group(0) @binding(2) var<storage, read_write> out_idx: array<i32>;

struct Params {
    n: u32,
    npoint: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

var<workgroup> best_dist: array<f32, 256>;
var<workgroup> best_idx: array<u32, 256>;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>, @builtin(local_invocation_id) lid: vec3<u32>) {
    let b = wid.x;
    let tid = lid.x;
    let n = params.n;
    let base = b * n;

    for (var i = tid; i < n; i += 256u) {
        dist[base + i] = 1e10;
    }
    workgroupBarrier();

    var last = 0u;
    if (tid == 0u) {
        out_idx[b * params.npoint] = 0;
        dist[base] = -1.0;
    }
    workgroupBarrier();

    for (var s = 1u; s < params.npoint; s++) {
        let lx = xyz[(base + last) * 3u];
        let ly = xyz[(base + last) * 3u + 1u];
        let lz = xyz[(base + last) * 3u + 2u];

        var bd = -1.0;
        var bi = 0u;
        for (var i = tid; i < n; i += 256u) {
            var cur = dist[base + i];
            if (cur >= 0.0) {
                let dx = xyz[(base + i) * 3u] - lx;
                let dy = xyz[(base + i) * 3u + 1u] - ly;
                let dz = xyz[(base + i) * 3u + 2u] - lz;
                let d = dx * dx + dy * dy + dz * dz;
                if (d < cur) {
                    cur = d;
                    dist[base + i] = d;
                }
                if (cur > bd) {
                    bd = cur;
                    bi = i;
                }
            }
        }
        best_dist[tid] = bd;
        best_idx[tid] = bi;
        workgroupBarrier();

        // Tree reduction; ties go to the lower index.
        var stride = 128u;
        while (stride > 0u) {
            if (tid < stride) {
                let od = best_dist[tid + stride];
                let oi = best_idx[tid + stride];
                if (od > best_dist[tid] || (od == best_dist[tid] && oi < best_idx[tid])) {
                    best_dist[tid] = od;
                    best_idx[tid] = oi;
                }
            }
            workgroupBarrier();
            stride = stride / 2u;
        }

        last = best_idx[0];
        if (tid == 0u) {
            out_idx[b * params.npoint + s] = i32(last);
            dist[base + last] = -1.0;
        }
        workgroupBarrier();
    }
}
`

// ballQueryShader finds up to nsample neighbors within r2 (squared radius)
// of each query center. One thread per center; the first hit pre-fills the
// whole row so short rows come out padded.
const ballQueryShader = `
@group(0) @binding(0) var<storage, read> centers: array<f32>;
@group(0) @binding(1) var<storage, read> xyz: array<f32>;
@group(0) @binding(2) var<storage, read_write> out_idx: array<i32>;

struct Params {
    b: u32,
    n: u32,
    m: u32,
    nsample: u32,
    r2: f32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let t = gid.x;
    if (t >= params.b * params.m) {
        return;
    }
    let b = t / params.m;
    let n = params.n;

    let cx = centers[t * 3u];
    let cy = centers[t * 3u + 1u];
    let cz = centers[t * 3u + 2u];

    var cnt = 0u;
    for (var j = 0u; j < n; j++) {
        let dx = xyz[(b * n + j) * 3u] - cx;
        let dy = xyz[(b * n + j) * 3u + 1u] - cy;
        let dz = xyz[(b * n + j) * 3u + 2u] - cz;
        let d2 = dx * dx + dy * dy + dz * dz;
        if (d2 < params.r2) {
            if (cnt == 0u) {
                for (var k = 0u; k < params.nsample; k++) {
                    out_idx[t * params.nsample + k] = i32(j);
                }
            }
            out_idx[t * params.nsample + cnt] = i32(j);
            cnt++;
            if (cnt >= params.nsample) {
                break;
            }
        }
    }
}
`

// gatherShader gathers feature columns: out[b,c,m] = feat[b,c,idx[b,m]].
// One thread per output element.
const gatherShader = `
@group(0) @binding(0) var<storage, read> feat: array<f32>;
@group(0) @binding(1) var<storage, read> idx: array<i32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;

struct Params {
    b: u32,
    c: u32,
    n: u32,
    m: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let t = gid.x;
    if (t >= params.b * params.c * params.m) {
        return;
    }
    let m = t % params.m;
    let bc = t / params.m;
    let b = bc / params.c;
    let j = u32(idx[b * params.m + m]);
    out[t] = feat[bc * params.n + j];
}
`

// gatherGradShader scatter-adds gather gradients back into the feature
// shape. One thread per (batch, channel) row; rows are disjoint so no
// atomics are needed.
const gatherGradShader = `
@group(0) @binding(0) var<storage, read> grad: array<f32>;
@group(0) @binding(1) var<storage, read> idx: array<i32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;

struct Params {
    b: u32,
    c: u32,
    n: u32,
    m: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let bc = gid.x;
    if (bc >= params.b * params.c) {
        return;
    }
    let b = bc / params.c;
    for (var m = 0u; m < params.m; m++) {
        let j = u32(idx[b * params.m + m]);
        out[bc * params.n + j] += grad[bc * params.m + m];
    }
}
`

// groupShader gathers grouped feature columns:
// out[b,c,m,s] = feat[b,c,idx[b,m,s]]. One thread per output element.
const groupShader = `
@group(0) @binding(0) var<storage, read> feat: array<f32>;
@group(0) @binding(1) var<storage, read> idx: array<i32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;

struct Params {
    b: u32,
    c: u32,
    n: u32,
    m: u32,
    s: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let t = gid.x;
    if (t >= params.b * params.c * params.m * params.s) {
        return;
    }
    let ms = params.m * params.s;
    let bc = t / ms;
    let b = bc / params.c;
    let rem = t % ms;
    let j = u32(idx[b * ms + rem]);
    out[t] = feat[bc * params.n + j];
}
`

// groupGradShader scatter-adds grouped gather gradients. One thread per
// (batch, channel) row.
const groupGradShader = `
@group(0) @binding(0) var<storage, read> grad: array<f32>;
@group(0) @binding(1) var<storage, read> idx: array<i32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;

struct Params {
    b: u32,
    c: u32,
    n: u32,
    m: u32,
    s: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let bc = gid.x;
    if (bc >= params.b * params.c) {
        return;
    }
    let b = bc / params.c;
    let ms = params.m * params.s;
    for (var r = 0u; r < ms; r++) {
        let j = u32(idx[b * ms + r]);
        out[bc * params.n + j] += grad[bc * ms + r];
    }
}
`

// threeNNShader finds the three nearest known points for each unknown
// point, nearest first. One thread per unknown point. Distances come back
// as Euclidean (square-rooted) values.
const threeNNShader = `
@group(0) @binding(0) var<storage, read> unknown: array<f32>;
@group(0) @binding(1) var<storage, read> known: array<f32>;
@group(0) @binding(2) var<storage, read_write> out_dist: array<f32>;
@group(0) @binding(3) var<storage, read_write> out_idx: array<i32>;

struct Params {
    b: u32,
    n: u32,
    m: u32,
}
@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let t = gid.x;
    if (t >= params.b * params.n) {
        return;
    }
    let b = t / params.n;
    let m = params.m;

    let ux = unknown[t * 3u];
    let uy = unknown[t * 3u + 1u];
    let uz = unknown[t * 3u + 2u];

    var d1 = 1e40;
    var d2 = 1e40;
    var d3 = 1e40;
    var i1 = 0u;
    var i2 = 0u;
    var i3 = 0u;

    for (var j = 0u; j < m; j++) {
        let dx = known[(b * m + j) * 3u] - ux;
        let dy = known[(b * m + j) * 3u + 1u] - uy;
        let dz = known[(b * m + j) * 3u + 2u] - uz;
        let d = dx * dx + dy * dy + dz * dz;
        if (d < d1) {
            d3 = d2; i3 = i2;
            d2 = d1; i2 = i1;
            d1 = d; i1 = j;
        } else if (d < d2) {
            d3 = d2; i3 = i2;
            d2 = d; i2 = j;
        } else if (d < d3) {
            d3 = d; i3 = j;
        }
    }

    out_dist[t * 3u] = sqrt(d1);
    out_dist[t * 3u + 1u] = sqrt(d2);
    out_dist[t * 3u + 2u] = sqrt(d3);
    out_idx[t * 3u] = i32(i1);
    out_idx[t * 3u + 1u] = i32(i2);
    out_idx[t * 3u + 2u] = i32(i3);
}
`

// threeInterpolateShader computes the weighted three-neighbor sum:
// out[b,c,i] = sum_k w[b,i,k] * feat[b,c,idx[b,i,k]]. One thread per
// output element.
const threeInterpolateShader = `
@group(0) @binding(0) var<storage, read> feat: array<f32>;
@group(0) @binding(1) var<storage, read> idx: array<i32>;
@group(0) @binding(2) var<storage, read> weight: array<f32>;
@group(0) @binding(3) var<storage, read_write> out: array<f32>;

struct Params {
    b: u32,
    c: u32,
    m: u32,
    n: u32,
}
@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let t = gid.x;
    if (t >= params.b * params.c * params.n) {
        return;
    }
    let i = t % params.n;
    let bc = t / params.n;
    let b = bc / params.c;
    let row = (b * params.n + i) * 3u;

    var acc = 0.0;
    for (var k = 0u; k < 3u; k++) {
        let j = u32(idx[row + k]);
        acc += weight[row + k] * feat[bc * params.m + j];
    }
    out[t] = acc;
}
`

// threeInterpolateGradShader scatters interpolation gradients back onto the
// source features, scaled by the weights. One thread per (batch, channel)
// row.
const threeInterpolateGradShader = `
@group(0) @binding(0) var<storage, read> grad: array<f32>;
@group(0) @binding(1) var<storage, read> idx: array<i32>;
@group(0) @binding(2) var<storage, read> weight: array<f32>;
@group(0) @binding(3) var<storage, read_write> out: array<f32>;

struct Params {
    b: u32,
    c: u32,
    m: u32,
    n: u32,
}
@group(0) @binding(4) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let bc = gid.x;
    if (bc >= params.b * params.c) {
        return;
    }
    let b = bc / params.c;
    for (var i = 0u; i < params.n; i++) {
        let row = (b * params.n + i) * 3u;
        let g = grad[bc * params.n + i];
        for (var k = 0u; k < 3u; k++) {
            let j = u32(idx[row + k]);
            out[bc * params.m + j] += weight[row + k] * g;
        }
    }
}
`

// addShader performs element-wise addition: result = a + b.
const addShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = a[idx] + b[idx];
    }
}
`
